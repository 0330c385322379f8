package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "shopmated", Short: "daemon"}
	AddHelpJSONFlag(root)

	knowledge := &cobra.Command{Use: "knowledge", Aliases: []string{"kb"}, Short: "knowledge tools"}
	upload := &cobra.Command{Use: "upload <file>", Short: "upload a document", Run: func(*cobra.Command, []string) {}}
	upload.Flags().String("uri", "", "target s3:// URI")
	upload.Flags().IntP("limit", "l", 5, "size limit in MB")
	_ = upload.MarkFlagRequired("uri")
	knowledge.AddCommand(upload)

	hidden := &cobra.Command{Use: "debug", Hidden: true, Run: func(*cobra.Command, []string) {}}
	root.AddCommand(knowledge, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(newTestRoot())

	assert.Equal(t, "shopmated", schema.Name)
	assert.Empty(t, schema.Flags)
	require.Len(t, schema.Subcommands, 1)

	kb := schema.Subcommands[0]
	assert.Equal(t, []string{"kb"}, kb.Aliases)
	require.Len(t, kb.Subcommands, 1)

	upload := kb.Subcommands[0]
	require.Len(t, upload.Flags, 2)
	byName := map[string]FlagSchema{}
	for _, f := range upload.Flags {
		byName[f.Name] = f
	}
	assert.True(t, byName["uri"].Required)
	assert.False(t, byName["limit"].Required)
	assert.Equal(t, "l", byName["limit"].Shorthand)
	assert.Equal(t, "5", byName["limit"].Default)
	assert.Equal(t, "int", byName["limit"].Type)
}

func TestWriteHelpJSON(t *testing.T) {
	root := newTestRoot()

	var buf bytes.Buffer
	found, err := WriteHelpJSON(&buf, root, []string{"kb", "upload", "--help-json"})
	require.NoError(t, err)
	require.True(t, found)

	var schema CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Equal(t, "upload", schema.Name)

	buf.Reset()
	found, err = WriteHelpJSON(&buf, root, []string{"knowledge", "upload", "file.txt"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, buf.String())
}
