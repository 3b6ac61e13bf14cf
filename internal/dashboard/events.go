package dashboard

import (
	"context"

	"github.com/guttosm/tradedash/internal/domain/dto"
	"github.com/guttosm/tradedash/internal/domain/models"
)

// event is a message processed on the loop goroutine. handle reports whether
// state changed and the view must be rendered again.
type event interface {
	handle(d *Dashboard) bool
}

// spawner runs a network call off the loop and delivers its result as an event.
type spawner interface {
	spawn(op string, call func(ctx context.Context) event)
}

type refreshRequested struct{}

func (refreshRequested) handle(d *Dashboard) bool {
	d.ledger.RefreshTrades()
	d.ledger.RefreshStats()
	return false
}

type tradesFetched struct {
	trades []models.TradeRecord
	err    error
}

func (e tradesFetched) handle(d *Dashboard) bool { return d.ledger.applyTrades(e) }

type statsFetched struct {
	stats models.StatsSnapshot
	err   error
}

func (e statsFetched) handle(d *Dashboard) bool { return d.ledger.applyStats(e) }

type fileSelected struct {
	file FileHandle
}

func (e fileSelected) handle(d *Dashboard) bool {
	d.upload.SelectFile(e.file)
	return true
}

type uploadSubmitted struct{}

func (uploadSubmitted) handle(d *Dashboard) bool {
	d.upload.SubmitUpload()
	return true
}

type uploadFinished struct {
	attempt string
	resp    *dto.UploadResponse
	err     error
}

func (e uploadFinished) handle(d *Dashboard) bool {
	d.upload.applyResult(e)
	return true
}

type currentRequested struct {
	reply chan Frame
}

func (e currentRequested) handle(d *Dashboard) bool {
	e.reply <- d.frame
	return false
}

type subscribed struct {
	ch    chan Frame
	reply chan int
}

func (e subscribed) handle(d *Dashboard) bool {
	d.nextSub++
	d.subs[d.nextSub] = e.ch
	offer(e.ch, d.frame)
	e.reply <- d.nextSub
	return false
}

type unsubscribed struct {
	id int
}

func (e unsubscribed) handle(d *Dashboard) bool {
	if ch, ok := d.subs[e.id]; ok {
		delete(d.subs, e.id)
		close(ch)
	}
	return false
}
