package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplylens/backend/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlatformCmd(t *testing.T) {
	out, err := run(t, "platform", "CJ")
	require.NoError(t, err)

	var profile domain.PlatformProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, domain.PlatformCJ, profile.ID)

	out, err = run(t, "platform")
	require.NoError(t, err)
	var all []domain.PlatformProfile
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all, len(domain.SupplierPlatforms()))

	_, err = run(t, "platform", "myspace")
	assert.ErrorIs(t, err, domain.ErrPlatformNotFound)
}

func TestSuppliersCmd(t *testing.T) {
	t.Setenv("SUPPLYLENS_CACHE_TYPE", "memory")

	out, err := run(t, "suppliers", "--title", "Wireless Bluetooth Earbuds", "--price", "24.99", "--category", "electronics")
	require.NoError(t, err)

	var resp struct {
		Query      string                     `json:"query"`
		Candidates []domain.SupplierCandidate `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(t, resp.Query)
	require.Len(t, resp.Candidates, 2)
}

func TestSuppliersFlags_Input(t *testing.T) {
	tests := []struct {
		name    string
		flags   suppliersFlags
		wantErr bool
	}{
		{name: "valid", flags: suppliersFlags{title: "Mug", price: "12.50", source: "AliExpress"}},
		{name: "bad price", flags: suppliersFlags{title: "Mug", price: "twelve"}, wantErr: true},
		{name: "unknown source", flags: suppliersFlags{title: "Mug", price: "1", source: "myspace"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := tt.flags.input()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "12.50", input.Price.StringFixed(2))
			assert.Equal(t, domain.PlatformAliExpress, input.SourcePlatform)
		})
	}
}

func TestSuppliersCmd_RequiresTitle(t *testing.T) {
	_, err := run(t, "suppliers", "--price", "10")
	assert.Error(t, err)
}

func TestExtractCmd_RequiresURL(t *testing.T) {
	_, err := run(t, "extract")
	assert.Error(t, err)
}
