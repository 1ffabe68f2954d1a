package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"solidus/sitemap/internal/domain"
	"solidus/sitemap/internal/domain/task"
	"solidus/sitemap/internal/queue"
	"solidus/sitemap/internal/sitemap"
	"solidus/sitemap/internal/state"
)

var ErrMissingHost = errors.New("sitemap task without host")

type Service struct {
	catalog     sitemap.Catalog
	router      sitemap.RouteProvider
	features    sitemap.FeatureSet
	urlOptions  domain.URLOptions
	queue       queue.Queue
	runStore    state.RunStore
	groupName   string
	minIdleTime time.Duration
	now         func() time.Time
}

func NewService(
	catalog sitemap.Catalog,
	router sitemap.RouteProvider,
	features sitemap.FeatureSet,
	urlOptions domain.URLOptions,
	queue queue.Queue,
	runStore state.RunStore,
	groupName string,
	minIdleTime int,
) *Service {
	if minIdleTime <= 0 {
		minIdleTime = 120
	}

	return &Service{
		catalog:     catalog,
		router:      router,
		features:    features,
		urlOptions:  urlOptions,
		queue:       queue,
		runStore:    runStore,
		groupName:   groupName,
		minIdleTime: time.Duration(minIdleTime) * time.Second,
		now:         time.Now,
	}
}

// Generate runs one sitemap enumeration with its own sink. A failed run
// leaves the previously stored run untouched.
func (s *Service) Generate(ctx context.Context, t *task.GenerateSitemapTask) (*domain.RunSummary, []domain.Entry, error) {
	if t.Host == "" {
		return nil, nil, ErrMissingHost
	}

	sections := t.Sections
	if len(sections) == 0 {
		sections = domain.DefaultSections
	}

	summary := &domain.RunSummary{
		RunID:     t.RunID,
		Host:      t.Host,
		Sections:  sections,
		StartedAt: s.now(),
	}

	urlOptions := make(domain.URLOptions, len(s.urlOptions)+1)
	for k, v := range s.urlOptions {
		urlOptions[k] = v
	}
	urlOptions["host"] = t.Host

	entries := &domain.Entries{}
	enumerator := sitemap.New(entries, s.catalog, s.router,
		sitemap.WithFeatures(s.features),
		sitemap.WithDefaultURLOptions(urlOptions),
		sitemap.WithClock(s.now),
	)

	log.Infof("🔄 Generating sitemap for %s (run %s)", t.Host, t.RunID)

	for _, section := range sections {
		before := entries.Len()
		if err := addSection(ctx, enumerator, section, t.Options); err != nil {
			entries.Reset()
			return nil, nil, fmt.Errorf("failed to add %s section for %s: %w", section, t.Host, err)
		}
		log.Debugf("Section %s added %d entries", section, entries.Len()-before)
	}

	summary.EntryCount = entries.Len()
	summary.FinishedAt = s.now()

	if s.runStore != nil {
		if err := s.runStore.SaveRun(ctx, *summary, entries.Items()); err != nil {
			return nil, nil, err
		}
	}

	log.Infof("✅ Sitemap for %s: %d entries in %s",
		t.Host, summary.EntryCount, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	return summary, entries.Items(), nil
}

func addSection(ctx context.Context, e *sitemap.Enumerator, section domain.Section, opts domain.Options) error {
	switch section {
	case domain.SectionLogin:
		return e.AddLogin(opts)
	case domain.SectionSignup:
		return e.AddSignup(opts)
	case domain.SectionAccount:
		return e.AddAccount(opts)
	case domain.SectionPasswordReset:
		return e.AddPasswordReset(opts)
	case domain.SectionTaxons:
		return e.AddTaxons(ctx, opts)
	case domain.SectionProducts:
		return e.AddProducts(ctx, opts)
	case domain.SectionPages:
		return e.AddPages(ctx, opts)
	default:
		return &domain.UnknownSectionError{Name: section.String()}
	}
}

// Enqueue publishes a generation task for the workers.
func (s *Service) Enqueue(ctx context.Context, host string, sections []domain.Section, opts domain.Options) (*task.GenerateSitemapTask, error) {
	if host == "" {
		return nil, ErrMissingHost
	}

	t := task.NewGenerateSitemapTask(host, sections, opts)
	if _, err := s.queue.AddTask(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to enqueue sitemap for %s: %w", host, err)
	}

	log.Infof("📥 Queued sitemap run %s for %s", t.RunID, host)
	return t, nil
}

func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, numWorkers, queue.StreamName(task.GenerateSitemapType))

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName string) {
	// Picks up runs whose worker died before acking
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.minIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				consumer := fmt.Sprintf("autoclaimer-%d", time.Now().UnixNano())
				claimedMessages, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
					continue
				}
				for _, msg := range claimedMessages {
					log.Infof("🔄 Auto-claimed message %s from %s", msg.ID, streamName)
					if err := s.processMessage(ctx, streamName, &msg); err != nil {
						log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("sitemap-worker-%d", workerID)
			log.Infof("🚀 Starting worker %d as consumer %s", workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 Worker %d stopping", workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, streamName, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

// processMessage acks only successful runs; failed ones stay pending for the auto-claimer.
func (s *Service) processMessage(ctx context.Context, streamName string, msg *redis.XMessage) error {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	switch taskType {
	case task.GenerateSitemapType:
		generateTask, err := task.Decode[task.GenerateSitemapTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal sitemap task data: %w", err)
		}

		if _, _, err := s.Generate(ctx, generateTask); err != nil {
			return fmt.Errorf("sitemap run %s failed: %w", generateTask.RunID, err)
		}

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	if err := s.queue.AckTask(ctx, streamName, s.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}
