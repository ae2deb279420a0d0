package apicontract_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/bipagem/api-contract"
)

func TestSpecIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{
		"/api/v1/catalog",
		"/api/v1/catalog/sync",
		"/api/v1/scans",
		"/api/v1/scans/import",
		"/api/v1/products",
		"/api/v1/exports/{subset}",
		"/healthz",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}
