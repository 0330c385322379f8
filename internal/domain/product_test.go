package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct_TrimsName(t *testing.T) {
	now := time.Now()
	p := NewProduct("  iPhone 15  ", 3999.99, "https://img", now)

	assert.Equal(t, "iPhone 15", p.Name)
	assert.Equal(t, 3999.99, p.Price)
	assert.Equal(t, "https://img", p.ImageURL)
	assert.Equal(t, now, p.CreatedAt)
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		product *Product
		errMsg  string
	}{
		{"valid", &Product{Name: "ThinkPad", Price: 10}, ""},
		{"zero price allowed", &Product{Name: "ThinkPad"}, ""},
		{"nil", nil, "cannot be nil"},
		{"blank name", &Product{Name: "   ", Price: 1}, "Name is required"},
		{"negative price", &Product{Name: "ThinkPad", Price: -1}, "cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProduct(tt.product)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateReview(t *testing.T) {
	assert.NoError(t, ValidateReview(&Review{Content: "Super", Rating: 4}))
	assert.Error(t, ValidateReview(nil))
	assert.Error(t, ValidateReview(&Review{Content: " ", Rating: 4}))
	assert.Error(t, ValidateReview(&Review{Content: "ok", Rating: 6}))
}

func TestCleanLink(t *testing.T) {
	assert.Equal(t, "https://shop.pl/p/1", CleanLink("  https://shop.pl/\np/1\r\n "))
	assert.Equal(t, "", CleanLink(""))
}

func TestInsight_NeedsAnalysis(t *testing.T) {
	var missing *Insight
	assert.True(t, missing.NeedsAnalysis())
	assert.True(t, (&Insight{Status: AnalysisStatusNone}).NeedsAnalysis())
	assert.False(t, (&Insight{Status: AnalysisStatusProcessing}).NeedsAnalysis())
	assert.False(t, (&Insight{Status: AnalysisStatusCompleted}).NeedsAnalysis())
}

func TestIsValidAnalysisStatus(t *testing.T) {
	for _, s := range []AnalysisStatus{AnalysisStatusNone, AnalysisStatusProcessing, AnalysisStatusCompleted, AnalysisStatusError} {
		assert.True(t, IsValidAnalysisStatus(s), s)
	}
	assert.False(t, IsValidAnalysisStatus("unknown"))
}
