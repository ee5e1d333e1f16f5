package dezoomer

import (
	"context"
)

// Downloader is the subset of the download package's Downloader that the
// iterator needs; it is expressed as an interface here to keep this
// package independent of internal/download (which itself imports
// internal/dezoomer for TileReference/FetchResult).
type Downloader interface {
	Run(ctx context.Context, batch []TileReference, postProcess func([]byte) ([]byte, error), onTile func(TileReference, []byte, error)) []FetchResult
}

// RunZoomLevel drives a ZoomLevel as a lazy batched producer, per the
// specification's §4.2 loop:
//
//	loop:
//	  batch = level.next_tile_references(previous_result?)
//	  if batch empty: terminate
//	  results = downloader.run(batch)
//	  level.set_fetch_result(results)
//
// onTile is invoked by the downloader for every tile of the batch once
// its fetch (and post-processing) finishes, with the tile's bytes or its
// error, in whatever order they complete; it is typically bound to a
// function that decodes the bytes and hands them to an encoder. onBatch is called once per batch with its
// results, letting the caller update progress reporting.
func RunZoomLevel(ctx context.Context, lvl ZoomLevel, dl Downloader, onTile func(TileReference, []byte, error), onBatch func([]FetchResult)) {
	var previous []FetchResult
	for {
		batch := lvl.NextTileReferences(previous)
		if len(batch) == 0 {
			return
		}
		results := dl.Run(ctx, batch, lvl.PostProcess(), onTile)
		lvl.SetFetchResult(results)
		if onBatch != nil {
			onBatch(results)
		}
		previous = results
		if ctx.Err() != nil {
			return
		}
	}
}
