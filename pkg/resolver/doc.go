// Package resolver keeps a project's feature state consistent with its
// target and with the feature dependency graph.
//
// # Invariant
//
// Between two resolutions, every enabled feature f satisfies:
//
//   - f is supported by the current (language, framework), and
//   - every feature f requires is enabled as well.
//
// # Mutations
//
// [Resolver.Resolve] applies one [Mutation] to an [Input] and returns a new
// [Result]. There are three kinds of mutation:
//
//   - [ChangeLanguage] and [ChangeFramework] move the project to another
//     target. Enabled features the new target does not support are switched
//     off, then everything that required them is switched off too.
//   - [Enable] switches a feature on together with all of its transitive
//     requirements. If the feature or any requirement is unsupported, nothing
//     changes and the result carries a [Rejection].
//   - [Disable] switches a feature off together with every enabled feature
//     that transitively depends on it.
//
// Every forced change is recorded as a [Change], in the order it was made,
// so callers can explain the cascade to users.
//
// # Errors and rejections
//
// A rejected enable is a normal outcome and is reported as a value. The
// error return is reserved for caller mistakes: unknown features, unknown
// languages, or a framework that does not belong to the language.
//
// # Purity
//
// Resolution never mutates its input. The resolver holds no mutable state
// and can be shared between goroutines; callers that own a project state are
// responsible for serialising their own mutations.
package resolver
