// Package ldapcmd implements the command-line backend.
//
// A lookup runs the same directory query two ways at once: through a local
// ldapsearch binary and through an HTTP proxy that runs ldapsearch
// server-side. Both return LDIF-style text, parsed by [Parse]. The local
// result is the base and the proxy result only fills attributes the local
// one lacks.
//
// Every value is checked against a small character allow-list before it is
// placed on a command line or in a URL. Values that fail are rejected
// without running anything.
package ldapcmd
