package catalogrepo

import (
	"strings"
	"testing"
)

func TestSearchProductsQueryColumns(t *testing.T) {
	for _, col := range []string{"name ILIKE", "description ILIKE", "barcode ILIKE"} {
		if !strings.Contains(searchProductsQuery, col) {
			t.Errorf("search query does not match on %q", col)
		}
	}
}
