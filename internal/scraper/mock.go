package scraper

import "fmt"

const (
	mockImageURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/1/15/Cat_August_2010-4.jpg/1200px-Cat_August_2010-4.jpg"
	mockLink     = "http://google.com"
)

// MockSearchResults is the offline stand-in for SearchShallow.
func MockSearchResults(query string) []ProductHit {
	return []ProductHit{
		{Name: fmt.Sprintf("%s Pro", query), Price: 299, ImageURL: mockImageURL, Link: mockLink},
		{Name: fmt.Sprintf("%s Lite", query), Price: 99, ImageURL: mockImageURL, Link: mockLink},
		{Name: fmt.Sprintf("Markowe %s", query), Price: 450, ImageURL: mockImageURL, Link: mockLink},
	}
}

// MockDeepData is the offline stand-in for ScrapeDeep.
func MockDeepData(name string, price float64, link string) DeepData {
	return DeepData{
		Name:   name,
		Price:  price,
		Offers: []OfferHit{{Store: "MockStore", Price: price, Link: link}},
		Reviews: []ReviewHit{
			{Content: "Bateria trzyma krótko, ale dźwięk super.", Rating: 4.0, Source: "Forum"},
			{Content: "Nie polecam, zepsuły się po miesiącu.", Rating: 1.0, Source: "Ceneo"},
		},
	}
}
