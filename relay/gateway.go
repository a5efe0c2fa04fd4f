package relay

import (
	"chat-relay/domain"
	"chat-relay/repositories"
	"context"
	"log/slog"
	"time"
)

type presenceJob struct {
	hash     string
	online   bool
	lastSeen time.Time
}

type persistJob struct {
	message  *domain.Message
	presence *presenceJob
}

// GatewayWorker is the fire-and-forget persistence boundary. Submissions
// are queued on a buffered channel and applied by the supervised Run loop;
// a full queue drops the job with a warning. Storage failures are logged,
// never retried, never surfaced to peers — a message can be seen live and
// still fail to persist. This weak-durability contract is deliberate: it
// keeps relay latency independent of storage latency.
type GatewayWorker struct {
	log      *slog.Logger
	jobs     chan persistJob
	messages repositories.IMessageRepository
	profiles repositories.IProfileRepository
	index    repositories.ISearchIndex
}

func NewGatewayWorker(log *slog.Logger, messages repositories.IMessageRepository,
	profiles repositories.IProfileRepository, index repositories.ISearchIndex,
	bufferSize int) *GatewayWorker {
	return &GatewayWorker{
		log:      log,
		jobs:     make(chan persistJob, bufferSize),
		messages: messages,
		profiles: profiles,
		index:    index,
	}
}

func (w *GatewayWorker) SubmitMessage(msg domain.Message) {
	w.enqueue(persistJob{message: &msg})
}

func (w *GatewayWorker) SubmitPresence(profileHash string, online bool, lastSeen time.Time) {
	w.enqueue(persistJob{presence: &presenceJob{hash: profileHash, online: online, lastSeen: lastSeen}})
}

func (w *GatewayWorker) enqueue(job persistJob) {
	select {
	case w.jobs <- job:
	default:
		w.log.Warn("Persistence queue full, dropping job")
	}
}

func (w *GatewayWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-w.jobs:
			w.apply(job)
		}
	}
}

func (w *GatewayWorker) apply(job persistJob) {
	if job.message != nil {
		if err := w.messages.Store(*job.message); err != nil {
			w.log.Error("Message persistence failed", "room", job.message.Room, "err", err)
		} else if w.index != nil {
			if err := w.index.Index(*job.message); err != nil {
				w.log.Error("Message indexing failed", "room", job.message.Room, "err", err)
			}
		}
	}
	if job.presence != nil {
		err := w.profiles.UpsertPresence(job.presence.hash, job.presence.online, job.presence.lastSeen)
		if err != nil {
			w.log.Error("Profile presence update failed", "profile", job.presence.hash, "err", err)
		}
	}
}

// Pending reports the number of queued, not yet applied jobs.
func (w *GatewayWorker) Pending() int { return len(w.jobs) }
