package api

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

type fakeEvents struct {
	events   []dto.KafkaEvent
	dlq      []dto.KafkaDLQ
	reset    bool
	err      error
	gotLimit int
	gotOff   int
}

func (f *fakeEvents) ListEvents(_ context.Context, limit, offset int) ([]dto.KafkaEvent, error) {
	f.gotLimit, f.gotOff = limit, offset
	return f.events, f.err
}

func (f *fakeEvents) ListDLQ(_ context.Context, limit, offset int) ([]dto.KafkaDLQ, error) {
	f.gotLimit, f.gotOff = limit, offset
	return f.dlq, f.err
}

func (f *fakeEvents) ResetAll(context.Context) error {
	f.reset = true
	return f.err
}

type fakeProfiles struct {
	byUser map[string]dto.UserProfile
}

func (f *fakeProfiles) Create(_ context.Context, p dto.UserProfile) error {
	for _, existing := range f.byUser {
		if existing.UserID == p.UserID || existing.Username == p.Username {
			return dto.ErrAlreadyExists
		}
	}
	f.byUser[p.UserID] = p
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, userID string) error {
	if _, ok := f.byUser[userID]; !ok {
		return dto.ErrNotFound
	}
	delete(f.byUser, userID)
	return nil
}

func (f *fakeProfiles) GetByUsername(_ context.Context, username string) (*dto.UserProfile, error) {
	for _, p := range f.byUser {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, dto.ErrNotFound
}

func (f *fakeProfiles) ListProfiles(context.Context) ([]dto.UserProfile, error) {
	out := []dto.UserProfile{}
	for _, p := range f.byUser {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b dto.UserProfile) int { return cmp.Compare(a.UserID, b.UserID) })
	return out, nil
}

type fakeExperiences struct {
	byID      map[string]dto.ExperienceRecord
	listErr   error
	deleteErr error
}

func (f *fakeExperiences) Insert(_ context.Context, rec dto.ExperienceRecord) error {
	if _, ok := f.byID[rec.ID]; ok {
		return dto.ErrAlreadyExists
	}
	f.byID[rec.ID] = rec
	return nil
}

func (f *fakeExperiences) Update(_ context.Context, rec dto.ExperienceRecord) error {
	if _, ok := f.byID[rec.ID]; !ok {
		return dto.ErrNotFound
	}
	f.byID[rec.ID] = rec
	return nil
}

func (f *fakeExperiences) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return dto.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeExperiences) DeleteByUser(_ context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, rec := range f.byID {
		if rec.UserID == userID {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeExperiences) GetByID(_ context.Context, id string) (*dto.ExperienceRecord, error) {
	rec, ok := f.byID[id]
	if !ok {
		return nil, dto.ErrNotFound
	}
	return &rec, nil
}

// ListByUser returns records in map order so that handlers cannot rely on it.
func (f *fakeExperiences) ListByUser(_ context.Context, userID string) ([]dto.ExperienceRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []dto.ExperienceRecord{}
	for _, rec := range f.byID {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type produced struct {
	messageID uuid.UUID
	profile   *dto.UserProfile
	record    *dto.ExperienceRecord
	deleted   bool
}

type fakeProducer struct {
	mu   sync.Mutex
	sent []produced
	err  error
}

func (f *fakeProducer) ProduceProfile(_ context.Context, messageID uuid.UUID, p dto.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, produced{messageID: messageID, profile: &p})
	return nil
}

func (f *fakeProducer) ProduceExperience(_ context.Context, messageID uuid.UUID, rec dto.ExperienceRecord, deleted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, produced{messageID: messageID, record: &rec, deleted: deleted})
	return nil
}

type testEnv struct {
	svc         *Service
	events      *fakeEvents
	profiles    *fakeProfiles
	experiences *fakeExperiences
	producer    *fakeProducer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		events:      &fakeEvents{},
		profiles:    &fakeProfiles{byUser: map[string]dto.UserProfile{}},
		experiences: &fakeExperiences{byID: map[string]dto.ExperienceRecord{}},
		producer:    &fakeProducer{},
	}
	env.svc = NewService(ServiceDeps{
		Port:           0,
		EventsRepo:     env.events,
		ProfileRepo:    env.profiles,
		ExperienceRepo: env.experiences,
		Producer:       env.producer,
	})

	return env
}

// do runs a request through the full middleware chain without a network.
func (e *testEnv) do(t *testing.T, method, uri, body string) *fasthttp.Response {
	t.Helper()

	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	e.svc.server.Handler(&ctx)

	resp := &fasthttp.Response{}
	ctx.Response.CopyTo(resp)
	return resp
}

func decode[T any](t *testing.T, resp *fasthttp.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(resp.Body(), &out), string(resp.Body()))
	return out
}

var errDB = errors.New("db down")
