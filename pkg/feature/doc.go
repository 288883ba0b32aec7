// Package feature defines the closed set of project features and the
// per-project on/off state attached to them.
//
// # Catalog
//
// A [Catalog] is the ordered, immutable enumeration of every [Key] together
// with its human-readable [Info]. It is built once at startup (usually by
// the engine package from the static tables) and shared by reference. The
// declaration order of the catalog is the canonical order for every listing
// the engine produces, which keeps change logs and exports deterministic.
//
// # State
//
// A [State] maps each key to its enabled flag. New projects start from
// [NewState], which yields all-false defaults. States are values: the
// resolver never mutates its input and always hands back a fresh [State].
//
//	cat, _ := feature.NewCatalog([]feature.Info{
//	    {Key: feature.MailService, Label: "Mail service"},
//	    {Key: feature.PasswordReset, Label: "Password reset"},
//	})
//	st := feature.NewState(cat)
//	st.Enabled(feature.MailService) // false
//
// # Concurrency
//
// Catalogs and sets returned by the catalog are read-only after
// construction and safe for concurrent readers. [State] and [Set] values are
// plain maps and follow the usual Go rules for maps.
package feature
