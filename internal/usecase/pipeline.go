// Package usecase orchestrates the sync pipeline stages over the driven
// adapters: fetch, convert, sync, enrich, upload and push.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"KBSync/internal/domain"
	"KBSync/internal/enrich"
	"KBSync/internal/normalize"
	"KBSync/internal/ports"
	"KBSync/internal/reconcile"
	"KBSync/internal/snapshot"
	"KBSync/internal/transform"
	"KBSync/pkg/ratelimit"
)

// Object keys relative to the tenant prefix. The numbered names mirror the
// stage order so the bucket contents are self-describing in the store.
const (
	rawKey       = "01_zohodata.json"
	convertedKey = "02_converted_zohodata.json"

	enrichedDir        = "enriched"
	bothKey            = "enriched/01_synced_vectordata_with_both.json"
	keywordsOnlyKey    = "enriched/02_synced_vectordata_with_keywords_only.json"
	combinedOnlyKey    = "enriched/03_synced_vectordata_with_combined_only.json"
	neitherKey         = "enriched/04_synced_vectordata_without_both.json"
	processedSuffix    = "_processed"
	intermediateSuffix = "_with_keywords"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.ArticleSource
	Writer   ports.ArticleWriter
	Store    ports.ObjectStore
	Keywords ports.KeywordGenerator
	Embedder ports.Embedder
	Vectors  ports.VectorStore
	Limiter  *ratelimit.Limiter
	Logger   *slog.Logger

	Prefix     string
	Permission string
	Retention  int
	Collection string
}

// Pipeline implements the knowledge-base sync workflow.
type Pipeline struct {
	source   ports.ArticleSource
	writer   ports.ArticleWriter
	store    ports.ObjectStore
	keywords ports.KeywordGenerator
	embedder ports.Embedder
	vectors  ports.VectorStore
	limiter  *ratelimit.Limiter
	logger   *slog.Logger

	prefix     string
	permission string
	retention  int
	collection string

	now func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:     deps.Source,
		writer:     deps.Writer,
		store:      deps.Store,
		keywords:   deps.Keywords,
		embedder:   deps.Embedder,
		vectors:    deps.Vectors,
		limiter:    deps.Limiter,
		logger:     logger.With("component", "pipeline"),
		prefix:     deps.Prefix,
		permission: deps.Permission,
		retention:  deps.Retention,
		collection: deps.Collection,
		now:        time.Now,
	}
}

// Stage is one runnable pipeline step.
type Stage func(ctx context.Context) error

// Resolve maps a stage name to its runner. The second return is false for
// unknown names.
func (p *Pipeline) Resolve(name string) (Stage, bool) {
	stages := map[string]Stage{
		"fetch":   p.Fetch,
		"convert": p.Convert,
		"sync":    p.Sync,
		"enrich":  p.Enrich,
		"upload":  p.Upload,
		"push":    p.Push,
		"all":     p.All,
	}
	stage, ok := stages[name]
	return stage, ok
}

// All runs the regular update cycle end to end. Push is excluded: it writes
// in the opposite direction and is triggered on its own.
func (p *Pipeline) All(ctx context.Context) error {
	for _, step := range []struct {
		name string
		run  Stage
	}{
		{"fetch", p.Fetch},
		{"convert", p.Convert},
		{"sync", p.Sync},
		{"enrich", p.Enrich},
		{"upload", p.Upload},
	} {
		p.logger.Info("stage starting", "stage", step.name)
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("stage %s: %w", step.name, err)
		}
	}
	return nil
}

// Fetch pulls the published articles from the knowledge base and stores the
// raw batch.
func (p *Pipeline) Fetch(ctx context.Context) error {
	if p.source == nil {
		return errors.New("fetch stage requires an article source")
	}

	articles, err := p.source.ListArticles(ctx)
	if err != nil {
		return fmt.Errorf("list articles: %w", err)
	}
	if articles == nil {
		articles = []domain.SourceArticle{}
	}

	if err := p.putJSON(ctx, rawKey, articles); err != nil {
		return err
	}
	p.logger.Info("raw articles stored", "count", len(articles))
	return nil
}

// Convert maps the raw article batch into vector records.
func (p *Pipeline) Convert(ctx context.Context) error {
	var articles []domain.SourceArticle
	if err := p.getJSON(ctx, rawKey, &articles); err != nil {
		return err
	}

	records := make([]domain.VectorRecord, 0, len(articles))
	for _, article := range articles {
		records = append(records, transform.FromArticle(article))
	}

	if err := p.putJSON(ctx, convertedKey, records); err != nil {
		return err
	}
	p.logger.Info("articles converted", "count", len(records))
	return nil
}

// Sync reconciles the converted batch against the latest snapshot and writes
// a new timestamped snapshot.
func (p *Pipeline) Sync(ctx context.Context) error {
	var fresh []domain.VectorRecord
	if err := p.getJSON(ctx, convertedKey, &fresh); err != nil {
		return err
	}

	previous, previousKey, err := p.latestSnapshot(ctx)
	if err != nil {
		return err
	}
	if previousKey == "" {
		p.logger.Info("no previous snapshot, filtering fresh batch only")
	} else {
		p.logger.Info("reconciling against snapshot", "key", previousKey)
	}

	merged := reconcile.Merge(fresh, previous, p.permission)
	if err := p.writeSnapshot(ctx, merged); err != nil {
		return err
	}
	p.logger.Info("snapshot reconciled", "fresh", len(fresh), "previous", len(previous), "merged", len(merged))
	return nil
}

// Enrich splits the latest snapshot by missing fields, fills keywords and
// combined text per bucket, and merges everything into a new snapshot.
func (p *Pipeline) Enrich(ctx context.Context) error {
	if p.keywords == nil {
		return errors.New("enrich stage requires a keyword generator")
	}

	records, key, err := p.latestSnapshot(ctx)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("no snapshot to enrich")
	}

	if err := p.clearEnriched(ctx); err != nil {
		return err
	}

	buckets := transform.Split(records)
	p.logger.Info("records classified",
		"with_both", len(buckets.WithBoth),
		"keywords_only", len(buckets.KeywordsOnly),
		"combined_only", len(buckets.CombinedOnly),
		"neither", len(buckets.Neither))

	for _, bucket := range []struct {
		key     string
		records []domain.VectorRecord
	}{
		{bothKey, buckets.WithBoth},
		{keywordsOnlyKey, buckets.KeywordsOnly},
		{combinedOnlyKey, buckets.CombinedOnly},
		{neitherKey, buckets.Neither},
	} {
		if err := p.putJSON(ctx, bucket.key, bucket.records); err != nil {
			return err
		}
	}

	// Has keywords already, only the combined text is missing.
	fromKeywordsOnly := enrich.CombinedText(buckets.KeywordsOnly)
	if err := p.putJSON(ctx, processedKey(keywordsOnlyKey), fromKeywordsOnly); err != nil {
		return err
	}

	// Has combined text, only keywords are missing.
	fromCombinedOnly := enrich.Keywords(ctx, p.keywords, buckets.CombinedOnly, p.logger)
	if err := p.putJSON(ctx, processedKey(combinedOnlyKey), fromCombinedOnly); err != nil {
		return err
	}

	// Missing both: keywords first, then combined text derived from them.
	withKeywords := enrich.Keywords(ctx, p.keywords, buckets.Neither, p.logger)
	if err := p.putJSON(ctx, intermediateKey(neitherKey), withKeywords); err != nil {
		return err
	}
	fromNeither := enrich.CombinedText(withKeywords)
	if err := p.putJSON(ctx, processedKey(neitherKey), fromNeither); err != nil {
		return err
	}

	// Concatenation order matches the bucket numbering; no de-duplication.
	merged := make([]domain.VectorRecord, 0, buckets.Total())
	merged = append(merged, buckets.WithBoth...)
	merged = append(merged, fromKeywordsOnly...)
	merged = append(merged, fromCombinedOnly...)
	merged = append(merged, fromNeither...)

	if err := p.writeSnapshot(ctx, merged); err != nil {
		return err
	}
	p.logger.Info("snapshot enriched", "count", len(merged))
	return nil
}

// Upload embeds the latest snapshot and replaces the vector collection.
func (p *Pipeline) Upload(ctx context.Context) error {
	if p.embedder == nil || p.vectors == nil {
		return errors.New("upload stage requires an embedder and a vector store")
	}

	records, key, err := p.latestSnapshot(ctx)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("no snapshot to upload")
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.CombinedText
		if texts[i] == "" {
			texts[i] = rec.Answer
		}
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed snapshot: %w", err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embedder returned %d vectors for %d records", len(vectors), len(records))
	}

	docs := make([]ports.VectorDocument, len(records))
	for i, rec := range records {
		docs[i] = ports.VectorDocument{
			ID:        rec.ID,
			Content:   texts[i],
			Metadata:  rec,
			Embedding: vectors[i],
		}
	}

	if err := p.vectors.Replace(ctx, p.collection, docs); err != nil {
		return fmt.Errorf("replace collection: %w", err)
	}
	p.logger.Info("collection uploaded", "collection", p.collection, "count", len(docs))
	return nil
}

// Push creates one knowledge-base article per snapshot record, with bounded
// concurrency and paced submissions. Records with incomplete write payloads
// are skipped; a failed create skips the record and the batch continues.
func (p *Pipeline) Push(ctx context.Context) error {
	if p.writer == nil {
		return errors.New("push stage requires an article writer")
	}

	records, key, err := p.latestSnapshot(ctx)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("no snapshot to push")
	}

	limiter := p.limiter
	if limiter == nil {
		limiter = ratelimit.New(3, time.Second)
	}

	var (
		wg      sync.WaitGroup
		skipped int64
		mu      sync.Mutex
	)

	for _, rec := range records {
		payload, err := transform.ToArticlePayload(rec)
		if err != nil {
			p.logger.Warn("record skipped", "id", rec.ID, "title", rec.Title, "error", err)
			mu.Lock()
			skipped++
			mu.Unlock()
			continue
		}

		if err := limiter.Acquire(ctx); err != nil {
			wg.Wait()
			return fmt.Errorf("acquire push slot: %w", err)
		}

		wg.Add(1)
		go func(payload domain.ArticlePayload) {
			defer wg.Done()
			defer limiter.Release()

			if err := p.writer.CreateArticle(ctx, payload); err != nil {
				p.logger.Error("create article failed", "title", payload.Title, "error", err)
				mu.Lock()
				skipped++
				mu.Unlock()
			}
		}(payload)
	}
	wg.Wait()

	p.logger.Info("push finished", "total", len(records), "skipped", skipped)
	return nil
}

func (p *Pipeline) latestSnapshot(ctx context.Context) ([]domain.VectorRecord, string, error) {
	keys, err := p.store.List(ctx, p.prefix+"/synced/")
	if err != nil {
		return nil, "", fmt.Errorf("list snapshots: %w", err)
	}

	key, ok := snapshot.Latest(keys)
	if !ok {
		return nil, "", nil
	}

	body, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("get snapshot %s: %w", key, err)
	}

	var records []domain.VectorRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, "", fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return records, key, nil
}

// writeSnapshot stores records under a fresh timestamped key and prunes the
// retention window.
func (p *Pipeline) writeSnapshot(ctx context.Context, records []domain.VectorRecord) error {
	if records == nil {
		records = []domain.VectorRecord{}
	}

	key := snapshot.Key(p.prefix, p.now())
	body, err := normalize.MarshalJSON(records)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := p.store.Put(ctx, key, body); err != nil {
		return fmt.Errorf("put snapshot %s: %w", key, err)
	}
	p.logger.Info("snapshot written", "key", key)

	keys, err := p.store.List(ctx, p.prefix+"/synced/")
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	for _, stale := range snapshot.Stale(keys, p.retention) {
		if err := p.store.Delete(ctx, stale); err != nil {
			return fmt.Errorf("prune snapshot %s: %w", stale, err)
		}
		p.logger.Info("stale snapshot pruned", "key", stale)
	}
	return nil
}

func (p *Pipeline) clearEnriched(ctx context.Context) error {
	keys, err := p.store.List(ctx, p.prefix+"/"+enrichedDir+"/")
	if err != nil {
		return fmt.Errorf("list enriched objects: %w", err)
	}
	for _, key := range keys {
		if err := p.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete enriched object %s: %w", key, err)
		}
	}
	return nil
}

func (p *Pipeline) getJSON(ctx context.Context, key string, v any) error {
	body, err := p.store.Get(ctx, p.prefix+"/"+key)
	if err != nil {
		return fmt.Errorf("get object %s: %w", key, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode object %s: %w", key, err)
	}
	return nil
}

// putJSON stores v as indented, NFKC-normalized JSON.
func (p *Pipeline) putJSON(ctx context.Context, key string, v any) error {
	body, err := normalize.MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("encode object %s: %w", key, err)
	}
	if err := p.store.Put(ctx, p.prefix+"/"+key, body); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func processedKey(key string) string {
	return withSuffix(key, processedSuffix)
}

func intermediateKey(key string) string {
	return withSuffix(key, intermediateSuffix)
}

func withSuffix(key, suffix string) string {
	const ext = ".json"
	return key[:len(key)-len(ext)] + suffix + ext
}
