// Package catalog describes the static bodies of the model: one sun and an
// ordered set of orbiting bodies.
//
// A [Catalog] is validated once by [New] and is immutable afterwards. Every
// relative distance and radius is strictly positive and every name is
// unique, so code downstream may divide by a body's distance without
// checking it again.
//
// # Example
//
//	cat, err := catalog.New(sun, bodies...)
//	if err != nil {
//	    return err // *InvalidCatalogError, aborts startup
//	}
//	for _, b := range cat.Bodies() {
//	    fmt.Println(b.Name, b.RelativeDistance)
//	}
package catalog
