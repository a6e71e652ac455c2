package population

import (
	"context"
	"fmt"

	"opendaoc/internal/common"

	"github.com/rs/zerolog/log"
)

// FetchError wraps anything that went wrong before we had a body to parse
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Fetcher struct {
	proxy *common.Proxy
}

func NewFetcher(proxy *common.Proxy) *Fetcher {
	return &Fetcher{proxy: proxy}
}

// Fetch requests the status endpoint and parses the realm counts.
// Any status code is accepted as long as the body contains the counts
func (f *Fetcher) Fetch(ctx context.Context, url string) (Snapshot, error) {

	reply, err := f.proxy.Request(ctx, url)
	if err != nil {
		return Snapshot{}, &FetchError{URL: url, Err: err}
	}
	if reply.StatusCode != common.OK {
		log.Debug().Msg(fmt.Sprintf("Status endpoint %s answered %d, parsing anyway", url, reply.StatusCode))
	}

	snapshot, err := Parse(string(reply.Body))
	if err != nil {
		return Snapshot{}, err
	}
	log.Debug().Msg(fmt.Sprintf("Population for %s: %d/%d/%d", url, snapshot.Albion, snapshot.Midgard, snapshot.Hibernia))
	return snapshot, nil
}
