package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ytvault/filter"
	"ytvault/vault"
	"ytvault/youtube"
)

type fakeLister struct {
	channels     []youtube.Channel
	videos       map[string][]youtube.Video
	durations    map[string]time.Duration
	durationsErr error
	recentErr    map[string]error

	recentCalls   int
	durationCalls int
}

func (f *fakeLister) SubscribedChannels(ctx context.Context) ([]youtube.Channel, error) {
	return f.channels, nil
}

func (f *fakeLister) RecentVideos(ctx context.Context, channelID string, since time.Time) ([]youtube.Video, error) {
	f.recentCalls++
	if err := f.recentErr[channelID]; err != nil {
		return nil, err
	}
	return f.videos[channelID], nil
}

func (f *fakeLister) VideoDurations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error) {
	f.durationCalls++
	if f.durationsErr != nil {
		return nil, f.durationsErr
	}
	return f.durations, nil
}

type fakeTranscripts struct {
	failWith map[string]error
	calls    int
}

func (f *fakeTranscripts) Fetch(ctx context.Context, videoID, language string) (*youtube.Transcript, error) {
	f.calls++
	if err := f.failWith[videoID]; err != nil {
		return nil, err
	}
	return &youtube.Transcript{VideoID: videoID, FullText: "transcript of " + videoID, Language: language}, nil
}

type fakeSummarizer struct {
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (vault.Summary, error) {
	f.calls++
	if f.err != nil {
		return vault.Summary{}, f.err
	}
	return vault.Summary{Overview: "summary"}, nil
}

type fakeCache struct {
	existing  map[string]bool
	saveErr   map[string]error
	saved     []string
	docs      []*vault.Document
	saveCalls int
}

func (f *fakeCache) Contains(videoID string) bool { return f.existing[videoID] }

func (f *fakeCache) Save(doc *vault.Document) error {
	f.saveCalls++
	if err := f.saveErr[doc.VideoID]; err != nil {
		return err
	}
	f.saved = append(f.saved, doc.VideoID)
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeCache) EnsureReviewNotes() error { return nil }

type countingCompleter struct {
	response string
	calls    int
}

func (c *countingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return c.response, nil
}

func video(id, title, channel string) youtube.Video {
	return youtube.Video{
		ID: id, Title: title, Channel: channel, ChannelID: "UC" + channel,
		Published: time.Now().UTC(),
	}
}

func newTestRunner(lister *fakeLister, transcripts *fakeTranscripts, summarizer *fakeSummarizer, cache *fakeCache, completer *countingCompleter) *Runner {
	return NewRunner(lister, transcripts, summarizer, cache,
		filter.NewPipeline(completer, nil), nil)
}

func TestRunProcessesAndCaches(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos: map[string][]youtube.Video{
			"UCch1": {video("vid00000001", "First", "ch1"), video("vid00000002", "Second", "ch1")},
		},
	}
	transcripts := &fakeTranscripts{}
	summarizer := &fakeSummarizer{}
	cache := &fakeCache{}
	r := newTestRunner(lister, transcripts, summarizer, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.Processed != 2 || report.Candidates != 2 || report.Errors != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(cache.saved) != 2 {
		t.Fatalf("saved = %v", cache.saved)
	}
	if report.RunID == "" {
		t.Error("report missing run id")
	}
}

func TestRunKeepsRawTitleAndChannel(t *testing.T) {
	title := `Sleep: Why "Rest" Matters`
	channel := "Dr. A/B Labs"
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: channel}},
		videos: map[string][]youtube.Video{
			"UCch1": {video("vidPUNCT001", title, channel)},
		},
	}
	cache := &fakeCache{}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	if _, err := r.Run(context.Background(), Options{Days: 7}); err != nil {
		t.Fatal(err)
	}
	if len(cache.docs) != 1 {
		t.Fatalf("saved %d documents, want 1", len(cache.docs))
	}
	// Punctuation belongs in the document; only the file path is sanitized,
	// and that happens inside the store.
	if got := cache.docs[0].Title; got != title {
		t.Errorf("saved title = %q, want %q", got, title)
	}
	if got := cache.docs[0].Channel; got != channel {
		t.Errorf("saved channel = %q, want %q", got, channel)
	}
}

func TestRunSkipsCachedVideos(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos: map[string][]youtube.Video{
			"UCch1": {video("vid00000001", "Cached", "ch1"), video("vid00000002", "New", "ch1")},
		},
	}
	cache := &fakeCache{existing: map[string]bool{"vid00000001": true}}
	transcripts := &fakeTranscripts{}
	r := newTestRunner(lister, transcripts, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.SkippedCached != 1 {
		t.Errorf("SkippedCached = %d", report.SkippedCached)
	}
	if report.Processed != 1 || len(cache.saved) != 1 || cache.saved[0] != "vid00000002" {
		t.Errorf("report = %+v, saved = %v", report, cache.saved)
	}
	if transcripts.calls != 1 {
		t.Errorf("transcript fetches = %d, cached video must not be fetched", transcripts.calls)
	}
}

func TestRunMaxVideosCap(t *testing.T) {
	var vids []youtube.Video
	for i := range 10 {
		vids = append(vids, video(fmt.Sprintf("vid%08d", i), fmt.Sprintf("Video %d", i), "ch1"))
	}
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos:   map[string][]youtube.Video{"UCch1": vids},
	}
	cache := &fakeCache{}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7, MaxVideos: 3})
	if err != nil {
		t.Fatal(err)
	}
	if report.Candidates != 10 || report.Processed != 3 {
		t.Fatalf("report = %+v, want 3 processed of 10 candidates", report)
	}
	// First three in original order.
	for i, id := range cache.saved {
		if want := fmt.Sprintf("vid%08d", i); id != want {
			t.Errorf("saved[%d] = %q, want %q", i, id, want)
		}
	}
}

func TestRunPerVideoFailureIsolation(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos: map[string][]youtube.Video{
			"UCch1": {video("vidAAAAAAA1", "A", "ch1"), video("vidBBBBBBB1", "B", "ch1"), video("vidCCCCCCC1", "C", "ch1")},
		},
	}
	transcripts := &fakeTranscripts{failWith: map[string]error{
		"vidBBBBBBB1": errors.New("connection reset"),
	}}
	cache := &fakeCache{}
	r := newTestRunner(lister, transcripts, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.Errors != 1 || report.Processed != 2 {
		t.Fatalf("report = %+v", report)
	}
	if len(cache.saved) != 2 || cache.saved[0] != "vidAAAAAAA1" || cache.saved[1] != "vidCCCCCCC1" {
		t.Errorf("saved = %v", cache.saved)
	}
}

func TestRunNoTranscriptCountedSeparately(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos:   map[string][]youtube.Video{"UCch1": {video("vidAAAAAAA1", "A", "ch1")}},
	}
	transcripts := &fakeTranscripts{failWith: map[string]error{
		"vidAAAAAAA1": &youtube.TranscriptError{VideoID: "vidAAAAAAA1", Err: youtube.ErrNoTranscript},
	}}
	r := newTestRunner(lister, transcripts, &fakeSummarizer{}, &fakeCache{}, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.NoTranscript != 1 || report.Errors != 0 || report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunCacheWriteFailure(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos:   map[string][]youtube.Video{"UCch1": {video("vidAAAAAAA1", "A", "ch1")}},
	}
	cache := &fakeCache{saveErr: map[string]error{"vidAAAAAAA1": errors.New("disk full")}}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.Errors != 1 || report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunDryRun(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos:   map[string][]youtube.Video{"UCch1": {video("vidAAAAAAA1", "A", "ch1")}},
	}
	transcripts := &fakeTranscripts{}
	summarizer := &fakeSummarizer{}
	cache := &fakeCache{}
	r := newTestRunner(lister, transcripts, summarizer, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Candidates != 1 || report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if transcripts.calls != 0 || summarizer.calls != 0 || cache.saveCalls != 0 {
		t.Error("dry run must not fetch, summarize, or save")
	}
}

func TestRunNoPromptNeverCallsLLM(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos:   map[string][]youtube.Video{"UCch1": {video("vidAAAAAAA1", "A", "ch1")}},
	}
	completer := &countingCompleter{response: "[]"}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, &fakeCache{}, completer)

	_, err := r.Run(context.Background(), Options{Days: 7, IncludeKeywords: []string{"a"}})
	if err != nil {
		t.Fatal(err)
	}
	if completer.calls != 0 {
		t.Fatalf("llm completer called %d times without prompts, want 0", completer.calls)
	}
}

func TestRunDeduplicatesAcrossChannels(t *testing.T) {
	shared := video("vidSHARED01", "Collab", "ch1")
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}, {ID: "UCch2", Title: "ch2"}},
		videos: map[string][]youtube.Video{
			"UCch1": {shared},
			"UCch2": {shared},
		},
	}
	cache := &fakeCache{}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.Processed != 1 || len(cache.saved) != 1 {
		t.Fatalf("report = %+v, saved = %v", report, cache.saved)
	}
}

func TestRunExcludesChannels(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "Kept Channel"}, {ID: "UCch2", Title: "Noisy Channel"}},
		videos: map[string][]youtube.Video{
			"UCch1": {video("vidAAAAAAA1", "A", "Kept Channel")},
			"UCch2": {video("vidBBBBBBB1", "B", "Noisy Channel")},
		},
	}
	cache := &fakeCache{}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{
		Days:            7,
		ExcludeChannels: []string{"noisy channel"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.Processed != 1 || cache.saved[0] != "vidAAAAAAA1" {
		t.Fatalf("report = %+v, saved = %v", report, cache.saved)
	}
	if lister.recentCalls != 1 {
		t.Errorf("recent calls = %d, excluded channel must not be listed", lister.recentCalls)
	}
}

func TestRunDropsShorts(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos: map[string][]youtube.Video{
			"UCch1": {video("vidSHORT001", "Short", "ch1"), video("vidLONG0001", "Long", "ch1")},
		},
		durations: map[string]time.Duration{
			"vidSHORT001": 45 * time.Second,
			"vidLONG0001": 12 * time.Minute,
		},
	}
	cache := &fakeCache{}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.Processed != 1 || cache.saved[0] != "vidLONG0001" {
		t.Fatalf("report = %+v, saved = %v", report, cache.saved)
	}
}

func TestRunDurationFailureKeepsVideos(t *testing.T) {
	lister := &fakeLister{
		channels:     []youtube.Channel{{ID: "UCch1", Title: "ch1"}},
		videos:       map[string][]youtube.Video{"UCch1": {video("vidAAAAAAA1", "A", "ch1")}},
		durationsErr: errors.New("quotaExceeded"),
	}
	cache := &fakeCache{}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.Processed != 1 {
		t.Fatalf("report = %+v, duration failure must not drop videos", report)
	}
}

func TestRunChannelListingFailureContinues(t *testing.T) {
	lister := &fakeLister{
		channels: []youtube.Channel{{ID: "UCbad", Title: "bad"}, {ID: "UCgood", Title: "good"}},
		videos:   map[string][]youtube.Video{"UCgood": {video("vidGOOD0001", "G", "good")}},
		recentErr: map[string]error{
			"UCbad": &youtube.APIError{Op: "recent videos", Err: errors.New("boom")},
		},
	}
	cache := &fakeCache{}
	r := newTestRunner(lister, &fakeTranscripts{}, &fakeSummarizer{}, cache, &countingCompleter{})

	report, err := r.Run(context.Background(), Options{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if report.Processed != 1 || cache.saved[0] != "vidGOOD0001" {
		t.Fatalf("report = %+v, saved = %v", report, cache.saved)
	}
}
