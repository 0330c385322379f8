package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/shopmate/internal/config"
	"github.com/cloo-solutions/shopmate/internal/index"
	"github.com/cloo-solutions/shopmate/internal/knowledge"
	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/storage"
)

// KnowledgeCmd returns the knowledge command for inspecting and publishing
// the chat knowledge document.
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect or publish the knowledge document",
	}

	cmd.AddCommand(knowledgeQueryCmd())
	cmd.AddCommand(knowledgeUploadCmd())

	return cmd
}

func knowledgeQueryCmd() *cobra.Command {
	var (
		source string
		topK   int
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Build the index from the knowledge source and print the nearest chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runKnowledgeQuery(cmd.Context(), cmd.OutOrStdout(), source, args[0], topK, outputJSON)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Knowledge source (defaults to SHOPMATE_KNOWLEDGE_SOURCE)")
	cmd.Flags().IntVarP(&topK, "top", "k", index.DefaultTopK, "Number of chunks to return")
	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runKnowledgeQuery(ctx context.Context, w io.Writer, source, text string, topK int, outputJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logging.Init(cfg.Debug); err != nil {
		return err
	}
	defer logging.Sync()

	if source == "" {
		source = cfg.KnowledgeSource
	}
	if source == "" {
		return fmt.Errorf("no knowledge source: pass --source or set SHOPMATE_KNOWLEDGE_SOURCE")
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}

	document, err := knowledge.NewLoader(nil, objectGetter(objects)).Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load knowledge document: %w", err)
	}

	ix := index.New(embedder)
	if err := ix.Build(ctx, document); err != nil {
		return err
	}
	chunks, err := ix.Query(ctx, text, topK)
	if err != nil {
		return err
	}

	return writeChunks(w, ix.Len(), chunks, outputJSON)
}

func writeChunks(w io.Writer, total int, chunks []string, outputJSON bool) error {
	if outputJSON {
		data, err := json.MarshalIndent(map[string]interface{}{
			"indexed_chunks": total,
			"results":        chunks,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Indexed %d chunks\n", total)
	for i, c := range chunks {
		fmt.Fprintf(w, "\n[%d] %s\n", i+1, c)
	}
	return nil
}

func knowledgeUploadCmd() *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a knowledge document to S3",
		Long: `Uploads a local plain-text document to an s3://bucket/key URI so it can
be used as SHOPMATE_KNOWLEDGE_SOURCE. The bucket is created when missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKnowledgeUpload(cmd.Context(), cmd.OutOrStdout(), args[0], uri)
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "Destination s3://bucket/key (required)")
	_ = cmd.MarkFlagRequired("uri")

	return cmd
}

func runKnowledgeUpload(ctx context.Context, w io.Writer, path, uri string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	bucket, key, err := storage.ParseURI(uri)
	if err != nil {
		return err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(body) > storage.MaxObjectBytes {
		return storage.ErrObjectTooLarge
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logging.Init(cfg.Debug); err != nil {
		return err
	}
	defer logging.Sync()

	cfg.KnowledgeSource = uri
	client, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	if err := client.EnsureBucket(ctx, bucket); err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	if err := client.PutObject(ctx, bucket, key, body, contentType); err != nil {
		return err
	}

	fmt.Fprintf(w, "Uploaded %s to %s (%d bytes)\n", path, uri, len(body))
	return nil
}
