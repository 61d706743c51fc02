package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// @title           KhmerCoders Work Experience API
// @version         1.0
// @description     Work history of community members: CRUD, grouped profile view, Kafka producer and consumer trail.
//
// @BasePath  /
// @schemes   http
// @accept    json
// @produce   json

type EventsRepository interface {
	ListEvents(ctx context.Context, limit, offset int) ([]dto.KafkaEvent, error)
	ListDLQ(ctx context.Context, limit, offset int) ([]dto.KafkaDLQ, error)
	ResetAll(ctx context.Context) error
}

type ProfileRepository interface {
	Create(ctx context.Context, p dto.UserProfile) error
	Delete(ctx context.Context, userID string) error
	GetByUsername(ctx context.Context, username string) (*dto.UserProfile, error)
	ListProfiles(ctx context.Context) ([]dto.UserProfile, error)
}

type ExperienceRepository interface {
	Insert(ctx context.Context, rec dto.ExperienceRecord) error
	Update(ctx context.Context, rec dto.ExperienceRecord) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	GetByID(ctx context.Context, id string) (*dto.ExperienceRecord, error)
	ListByUser(ctx context.Context, userID string) ([]dto.ExperienceRecord, error)
}

type Producer interface {
	ProduceProfile(ctx context.Context, messageID uuid.UUID, p dto.UserProfile) error
	ProduceExperience(ctx context.Context, messageID uuid.UUID, rec dto.ExperienceRecord, deleted bool) error
}

type ServiceDeps struct {
	Port int

	EventsRepo     EventsRepository
	ProfileRepo    ProfileRepository
	ExperienceRepo ExperienceRepository

	// Producer is optional; the /producer routes answer 501 without it.
	Producer Producer
}

type Service struct {
	r      *router.Router
	server *fasthttp.Server
	port   int

	events      EventsRepository
	profiles    ProfileRepository
	experiences ExperienceRepository
	producer    Producer
}

func NewService(d ServiceDeps) *Service {
	rt := router.New()

	s := &Service{
		r:           rt,
		port:        d.Port,
		events:      d.EventsRepo,
		profiles:    d.ProfileRepo,
		experiences: d.ExperienceRepo,
		producer:    d.Producer,
	}

	s.mountRoutes()

	s.server = &fasthttp.Server{
		Handler:            RecoveryMiddleware(LoggingMiddleware(CORS(s.r.Handler))),
		Name:               "experience-api",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       15 * time.Second,
		MaxRequestBodySize: 2 << 20, // 2 MiB
	}

	return s
}

func (s *Service) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("net.Listen: %w", err)
	}

	log.Info().Int("port", s.port).Msg("Starting experience API")

	return s.Serve(ctx, ln)
}

// Serve blocks until ctx is cancelled or the listener fails.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	emergencyShutdown := make(chan error, 1)
	go func() {
		emergencyShutdown <- s.server.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		if err := s.server.Shutdown(); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}
		return <-emergencyShutdown
	case e := <-emergencyShutdown:
		return e
	}
}

func (s *Service) mountRoutes() {
	s.r.POST("/producer/profile", s.producerProfile)
	s.r.POST("/producer/experience", s.producerExperience)

	// Profiles
	s.r.POST("/profiles", s.createProfile)
	s.r.GET("/profiles", s.listProfiles)
	s.r.GET("/profiles/{username}", s.getProfile)
	s.r.DELETE("/profiles/{user_id}", s.deleteProfile)
	s.r.GET("/profiles/{username}/experiences", s.listProfileExperiences)
	s.r.GET("/profiles/{username}/experiences/grouped", s.groupProfileExperiences)

	// Experiences
	s.r.POST("/experiences", s.createExperience)
	s.r.GET("/experiences/{id}", s.getExperience)
	s.r.PUT("/experiences/{id}", s.updateExperience)
	s.r.DELETE("/experiences/{id}", s.deleteExperience)

	// Events/DLQ
	s.r.GET("/events", s.listEvents)
	s.r.GET("/dlq", s.listDLQ)

	// Admin & Health
	s.r.GET("/health", s.healthHandler)
	s.r.POST("/admin/reset", s.resetHandler)
}
