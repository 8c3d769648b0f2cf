// Package form builds multipart/form-data request bodies from an ordered
// mix of text and file fields.
//
// # Building a Form
//
// Fields are chained onto a [Data] and appear on the wire in the exact
// order they were added:
//
//	f, err := form.New().
//		Text("description", "quarterly report").
//		File("attachment", "/tmp/report.pdf")
//	if err != nil { ... }
//
// [Data.File] resolves the path immediately: the file is opened, its size
// recorded, and its MIME type inferred from the extension with a
// content-sniffing fallback. A missing or unreadable file fails the call
// and leaves the builder unchanged.
//
// # Sending
//
// A Data is single-use and owned by the request that sends it. [Data.Build]
// produces the body reader, the Content-Type carrying the boundary, and the
// body length. Small forms are buffered in memory so the Content-Length is
// known; forms with more than a megabyte of attached file data are streamed
// through a pipe instead.
package form
