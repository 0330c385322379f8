package tool

// NewShoppingRegistry registers the product lookup and installment tools.
func NewShoppingRegistry(products ProductFinder, offers OfferLister, insights InsightGetter) (*Registry, error) {
	r := NewRegistry()
	if err := r.Register(NewProductDetailsTool(products, offers, insights)); err != nil {
		return nil, err
	}
	if err := r.Register(NewInstallmentTool()); err != nil {
		return nil, err
	}
	return r, nil
}
