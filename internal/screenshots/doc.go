// Package screenshots turns a normalized manual specification into frame
// extractions.
//
// Driver walks the screenshot list in order, formats each timecode, and asks
// an Extractor for one frame per entry. The first failure aborts the run:
// Extract returns the paths produced before it together with an
// *ExtractionError naming the entry. With Workers > 1 extractions run on a
// bounded errgroup, but results and the reported failure still follow input
// order and frames written past the failing entry are removed.
//
// FFmpeg is the production Extractor; tests substitute their own.
package screenshots
