package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages          []ChatMessage `json:"messages"`
	Provider          string        `json:"provider,omitempty"`
	ActiveProductName string        `json:"active_product_name,omitempty"`
}

type ChatResponse struct {
	Response       string `json:"response"`
	ProviderUsed   string `json:"provider_used"`
	RAGContextUsed bool   `json:"rag_context_used"`
}

// ChatCmd creates the chat command.
func ChatCmd() *cobra.Command {
	var (
		provider string
		product  string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the shopping assistant",
		Long: `Sends one message to the assistant, or starts an interactive session
when no message is given. The session keeps the conversation history;
an empty line or EOF ends it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			s := &chatSession{api: api, provider: provider, product: product, out: cmd.OutOrStdout(), json: outputJSON}
			if len(args) == 1 {
				return s.send(args[0])
			}
			return s.repl(cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Preferred model provider (gemini, groq, anthropic, local)")
	cmd.Flags().StringVar(&product, "product", "", "Name of the product currently being viewed")

	return cmd
}

type chatSession struct {
	api      *APIClient
	provider string
	product  string
	history  []ChatMessage
	out      io.Writer
	json     bool
}

func (s *chatSession) send(message string) error {
	s.history = append(s.history, ChatMessage{Role: "user", Content: message})

	resp, err := s.api.Post("/chat", ChatRequest{
		Messages:          s.history,
		Provider:          s.provider,
		ActiveProductName: s.product,
	})
	if err != nil {
		s.history = s.history[:len(s.history)-1]
		return err
	}

	var chat ChatResponse
	if err := json.Unmarshal(resp.Data, &chat); err != nil {
		return fmt.Errorf("failed to parse chat response: %w", err)
	}
	s.history = append(s.history, ChatMessage{Role: "assistant", Content: chat.Response})

	if s.json {
		encoded, _ := json.MarshalIndent(chat, "", "  ")
		fmt.Fprintln(s.out, string(encoded))
		return nil
	}
	fmt.Fprintln(s.out, chat.Response)
	fmt.Fprintf(s.out, "  [%s, kontekst: %t]\n", chat.ProviderUsed, chat.RAGContextUsed)
	return nil
}

func (s *chatSession) repl(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return nil
		}
		if err := s.send(line); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				fmt.Fprintf(s.out, "! %s\n", apiErr.Message)
				continue
			}
			return err
		}
	}
}
