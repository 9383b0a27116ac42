// Package registry turns a serialized FileDescriptorSet into an immutable
// Snapshot of message descriptors keyed by name.
//
// Files are resolved in the order they appear in the set, so every import
// must precede the files that use it (protoc --include_imports emits sets in
// that order). A set that violates this, or that is not a valid
// FileDescriptorSet, fails with a *ParseError.
//
// Each message type, including nested ones at any depth, is indexed under:
//   - its canonical full name, e.g. "acme.events.Outer.Inner", or just
//     "RootField" for a file without a package
//   - its alias, when the file declares java_package: the java package joined
//     with the nested path, e.g. "com.acme.events.Outer.Inner"
//
// On a key collision a canonical name always keeps its own descriptor.
//
// Lookups also accept the dotted proto type name (".acme.events.Outer") and,
// as a last resort, the package-less nested path ("Outer.Inner"), in which
// case the first registered type with that path wins.
//
// A Snapshot is never modified after Build returns and may be shared freely.
package registry
