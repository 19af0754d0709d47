package document

import (
	"context"
	"errors"
)

// fetchBackground drops the current image and, when a URL is set, fetches it
// off the owning context. The result is applied only if the document still
// points at the URL that was requested.
func (d *Document) fetchBackground() {
	d.background = nil
	if d.art.BackgroundURL == nil || d.fetcher == nil {
		return
	}
	u := *d.art.BackgroundURL
	requested := u.String()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		img, err := d.fetcher.Fetch(d.ctx, &u)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				d.logger.Debug("background fetch failed", "url", requested, "error", err)
			}
			return
		}
		if d.ctx.Err() != nil {
			return
		}
		d.dispatch(func() {
			current := d.art.BackgroundURL
			if current == nil || current.String() != requested {
				d.logger.Debug("discarding stale background", "url", requested)
				return
			}
			d.background = img
			b := img.Bounds()
			d.logger.Info("background loaded", "url", requested, "width", b.Dx(), "height", b.Dy())
			d.notify(ChangeBackground)
		})
	}()
}
