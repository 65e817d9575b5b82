package crawl

import "sort"

// frontierItem is a queued URL with its priority rank (lower crawls first).
type frontierItem struct {
	url  string
	rank int
}

// frontier is the working queue of not-yet-visited same-host URLs. Membership
// is tracked for every URL ever queued, so no URL is fetched twice. All state
// is run-local; no synchronization is needed.
type frontier struct {
	items  []frontierItem
	queued map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{queued: make(map[string]struct{})}
}

// add queues a URL unless it was already queued or visited.
func (f *frontier) add(url string, rank int) {
	if _, seen := f.queued[url]; seen {
		return
	}
	f.queued[url] = struct{}{}
	f.items = append(f.items, frontierItem{url: url, rank: rank})
}

// markSeen records a URL as already handled without queueing it.
func (f *frontier) markSeen(url string) {
	f.queued[url] = struct{}{}
}

func (f *frontier) seen(url string) bool {
	_, ok := f.queued[url]
	return ok
}

// promote moves a URL to the front of the queue, queueing it first if
// necessary. Used for blog and service entry points.
func (f *frontier) promote(url string) {
	for i, item := range f.items {
		if item.url == url {
			f.items[i].rank = 0
			return
		}
	}
	if _, seen := f.queued[url]; seen {
		return
	}
	f.queued[url] = struct{}{}
	f.items = append(f.items, frontierItem{url: url, rank: 0})
}

// sortByRank stably orders the queue by ascending rank, preserving insertion
// order within a rank.
func (f *frontier) sortByRank() {
	sort.SliceStable(f.items, func(i, j int) bool {
		return f.items[i].rank < f.items[j].rank
	})
}

// truncate drops everything beyond the first n queued URLs.
func (f *frontier) truncate(n int) {
	if n >= 0 && len(f.items) > n {
		f.items = f.items[:n]
	}
}

// popBatch removes and returns up to n URLs from the front.
func (f *frontier) popBatch(n int) []string {
	if n > len(f.items) {
		n = len(f.items)
	}
	batch := make([]string, 0, n)
	for _, item := range f.items[:n] {
		batch = append(batch, item.url)
	}
	f.items = f.items[n:]
	return batch
}

func (f *frontier) empty() bool {
	return len(f.items) == 0
}
