package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

// ragSeparator joins retrieved chunks inside the prompt.
const ragSeparator = "\n---\n"

// PromptInput carries everything the first model call sees.
type PromptInput struct {
	ActiveProduct string
	RAGContext    string
	History       []domain.ChatTurn
	ToolCatalog   string
}

// BuildChatPrompt renders the assistant persona, the current context, the
// transcript and the tool catalogue into one prompt.
func BuildChatPrompt(in PromptInput) string {
	active := strings.TrimSpace(in.ActiveProduct)
	if active == "" {
		active = "Brak"
	}

	var sb strings.Builder
	sb.WriteString(`Jesteś Inteligentnym Asystentem Zakupowym. Twoim celem jest pomóc użytkownikowi w zakupach, łącząc twarde dane z bazy z twoją wiedzą ogólną.

---------------------------------------------------
AKTUALNY KONTEKST:
`)
	fmt.Fprintf(&sb, "- Użytkownik przegląda teraz produkt: %q\n", active)
	fmt.Fprintf(&sb, "- Dodatkowa wiedza (RAG/Sekrety): %s\n", in.RAGContext)
	sb.WriteString(`---------------------------------------------------
ZASADA KARDYNALNA (NAJWAŻNIEJSZA):
Twoja odpowiedź trafia BEZPOŚREDNIO do klienta na czacie.
- NIE WOLNO Ci wypisywać nazwy scenariusza.
- NIE WOLNO Ci pisać co robisz (np. "Analizuję bazę...").
- Pisz TYLKO finalną treść wiadomości.

TWOJE ZADANIE - ZIDENTYFIKUJ SCENARIUSZ (NIE WYPISUJ, KTÓRY) I ZACHOWAJ SIĘ ODPOWIEDNIO:

SCENARIUSZ 1: Użytkownik chce znaleźć/zmienić produkt
(np. pisze "ThinkPad", "Pokaż iPhone'a", "Szukam słuchawek", "Jakie są zalety produktu?")
-> Wtedy i TYLKO WTEDY użyj narzędzia.
-> Zwróć JSON: {"tool": "get_product_details", "args": {"product_name": "..."}}
-> Nie pisz żadnego tekstu, tylko JSON.
-> Do obliczeń ratalnych zwróć JSON: {"tool": "calculate_installment", "args": {"price": 0, "months": 0}}

SCENARIUSZ 2: Użytkownik zadaje pytanie o AKTUALNY produkt
(np. "Jaki ma ekran?", "Czy jest dobry do gier?", "W jakich kolorach jest dostępny?")
-> NIE używaj narzędzia (masz już produkt w kontekście).
-> Odpowiedz normalnym tekstem.
-> Użyj informacji z historii rozmowy (tam są dane z bazy o cenie/wadach).
-> Jeśli w historii brakuje szczegółów technicznych, użyj swojej WIEDZY OGÓLNEJ.

SCENARIUSZ 3: Pytania o RAG / Kontekst / Inne
(np. "Jaki jest kod rabatowy?", "Co mówi regulamin?", "tajne hasło")
-> Sprawdź sekcję "Dodatkowa wiedza (RAG)" powyżej.
-> Odpowiedz tekstem na podstawie tej wiedzy.

---------------------------------------------------
`)
	sb.WriteString(in.ToolCatalog)
	sb.WriteString("\nHISTORIA ROZMOWY:\n")
	sb.WriteString(formatHistory(in.History))
	sb.WriteString("Asystent:")
	return sb.String()
}

// BuildFollowUpPrompt asks for a one-sentence introduction to a structured
// tool payload that the client renders on its own.
func BuildFollowUpPrompt(in PromptInput, payload string) string {
	var sb strings.Builder
	sb.WriteString(BuildChatPrompt(in))
	sb.WriteString("\n\nWYNIK NARZĘDZIA (JSON, zostanie pokazany klientowi jako karta produktu):\n")
	sb.WriteString(payload)
	sb.WriteString(`

Napisz JEDNO krótkie zdanie wprowadzenia do powyższych danych.
NIE powtarzaj ceny, parametrów ani listy ofert, bo klient widzi je na karcie.
Nie zwracaj JSON.
Asystent:`)
	return sb.String()
}

func formatHistory(turns []domain.ChatTurn) string {
	var sb strings.Builder
	for _, t := range turns {
		prefix := "Użytkownik"
		if t.Role == domain.RoleAssistant {
			prefix = "Asystent"
		}
		fmt.Fprintf(&sb, "%s: %s\n", prefix, t.Content)
	}
	return sb.String()
}
