// Package fetch provides a configurable HTTP(S) client engine with
// three request modes: JSON request-response, multipart form
// submission, and streaming file downloads with progress reporting.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := fetch.Build(
//		fetch.WithTimeout(10 * time.Second),
//		fetch.WithUserAgent("myapp/1.0"),
//	)
//
// # Sending Requests
//
// Describe the request with an [Options] value and execute with
// [Client.Send]:
//
//	resp, err := c.Send(ctx, fetch.Options{
//		URL:    "https://api.example.com/v1/items",
//		Method: "post",
//		Body:   item,
//	})
//
// The returned [Response] carries the status the server actually
// produced: a 404 or 500 is a normal response with Success=false, not
// an error. Errors mean the exchange itself failed.
//
// # Multipart Forms
//
// Build a form with the form package and attach it to the request.
// A form takes precedence over Body:
//
//	f, err := form.New().
//		Text("caption", "profile shot").
//		File("photo", "face.png")
//	resp, err := c.Send(ctx, fetch.Options{URL: uploadURL, Method: "post", Form: f})
//
// # Downloading Files
//
// Stream a response body directly to disk with optional checksum
// verification and progress reporting:
//
//	path, err := c.Download(ctx, download.Options{
//		URL:       "https://example.com/release.tar.gz",
//		OutputDir: "/tmp",
//	}, download.WithProgress(download.NewLogSink(nil)))
//
// Data streams to a temp file in the destination directory and is
// renamed into place on success, so the destination is never partial.
//
// # Async Downloads
//
// A single file can be downloaded asynchronously with
// [Client.DownloadAsync]:
//
//	r, err := c.DownloadAsync(ctx, opts)
//	// ... do other work ...
//	if err := r.Err(); err != nil { ... }
//
// For multiple concurrent downloads, use [download.WithBatch] to set a
// concurrency limit and [download.Result.Add] to enqueue additional
// files:
//
//	r, err := c.DownloadAsync(ctx, optsA, download.WithBatch(4))
//	r.Add(ctx, optsB)
//	r.Add(ctx, optsC)
//	err = r.Wait() // blocks until all downloads finish
//
// For lower-level control see the
// [github.com/fetchlib/fetch/download] package.
package fetch
