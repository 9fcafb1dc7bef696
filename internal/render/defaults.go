package render

import "github.com/a2ui-go/a2ui/internal/schema"

// DefaultCatalog returns a Catalog seeded with the minimum component catalog
// (spec.md §4.3). Hosts that need custom component types call Register on
// the result before the first Snapshot.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		schema.TypeText,
		schema.TypeButton,
		schema.TypeColumn,
		schema.TypeRow,
		schema.TypeCard,
		schema.TypeList,
		schema.TypeIcon,
		schema.TypeDivider,
		schema.TypeCheckBox,
		schema.TypeTextField,
		schema.TypeColorSwatch,
	)
}
