package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/llm"
	"github.com/college-hq/advising-engine/pkg/models"
	"github.com/college-hq/advising-engine/pkg/prompts"
	"github.com/college-hq/advising-engine/pkg/repositories"
)

// AgentTypeAdvisor tags conversations and responses produced by the
// advising orchestrator.
const AgentTypeAdvisor = "academic_advisor"

// conversation titles derived from the first message are truncated here.
const conversationTitleLimit = 60

// AdvisingResponse is the envelope returned for one advising turn.
type AdvisingResponse struct {
	Agent                  string    `json:"agent"`
	UserID                 string    `json:"userId"`
	ConversationID         string    `json:"conversationId"`
	Response               string    `json:"response"`
	Timestamp              time.Time `json:"timestamp"`
	ProfileUsed            bool      `json:"profileUsed"`
	CoursesReferenced      int       `json:"coursesReferenced"`
	DegreeRequirementsUsed bool      `json:"degreeRequirementsUsed"`
	StudentMajor           string    `json:"studentMajor"`
	StudentYear            string    `json:"studentYear"`
	University             string    `json:"university"`
}

// AdvisingService is the composition root for an advising turn: profile,
// catalog context, conversation history, prompt assembly, generation, and
// persistence of the new exchange.
type AdvisingService interface {
	// Advise runs one advising turn. Catalog and history failures degrade
	// to empty context; a missing profile and a failed generation are the
	// two fatal conditions.
	Advise(ctx context.Context, userID, message, conversationID string) (*AdvisingResponse, error)
}

type advisingService struct {
	profiles      repositories.ProfileRepository
	catalog       CatalogService
	conversations repositories.ConversationRepository
	client        llm.Client
	genTimeout    time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewAdvisingService creates the advising orchestrator. genTimeout bounds
// the generation call; everything else runs under the request context.
func NewAdvisingService(
	profiles repositories.ProfileRepository,
	catalog CatalogService,
	conversations repositories.ConversationRepository,
	client llm.Client,
	genTimeout time.Duration,
	logger *zap.Logger,
) AdvisingService {
	return &advisingService{
		profiles:      profiles,
		catalog:       catalog,
		conversations: conversations,
		client:        client,
		genTimeout:    genTimeout,
		logger:        logger.Named("advising"),
		now:           time.Now,
	}
}

var _ AdvisingService = (*advisingService)(nil)

func (s *advisingService) Advise(ctx context.Context, userID, message, conversationID string) (*AdvisingResponse, error) {
	if userID == "" || message == "" {
		return nil, fmt.Errorf("%w: userId and message are required", apperrors.ErrValidation)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no profile for user", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	institution := ""
	if profile.University != nil {
		institution = profile.University.Name
	}

	// Catalog context is best-effort: a failed relevance search degrades
	// to empty context rather than failing the turn.
	relevant := &RelevantCourses{Courses: []models.Course{}}
	if found, err := s.catalog.FindRelevant(ctx, institution, message, profile); err != nil {
		s.logger.Warn("Relevance search failed, continuing with empty context",
			zap.String("user_id", userID),
			zap.Error(err))
	} else {
		relevant = found
	}

	if conversationID == "" {
		conversationID = repositories.NewConversationID(s.now())
	}

	// History is best-effort too.
	history := []models.Message{}
	if conv, err := s.conversations.Get(ctx, userID, conversationID); err == nil {
		history = conv.Messages
	}

	systemPrompt := prompts.BuildAdvisingSystemPrompt(profile, relevant.Requirement, relevant.Courses)

	chatMessages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		chatMessages = append(chatMessages, llm.Message{Role: m.Role, Content: m.Content})
	}
	chatMessages = append(chatMessages, llm.Message{Role: models.RoleUser, Content: message})

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	result, err := s.client.Generate(genCtx, systemPrompt, chatMessages)
	if err != nil {
		return nil, fmt.Errorf("advising generation: %w", err)
	}

	// Persisting the exchange is best-effort: the user still gets the
	// answer even if the write fails.
	if _, err := s.conversations.AppendMessage(ctx, userID, conversationID, message, result.Content); err != nil {
		s.logger.Error("Failed to persist advising exchange",
			zap.String("user_id", userID),
			zap.String("conversation_id", conversationID),
			zap.Error(err))
	} else if len(history) == 0 {
		s.ensureConversationMetadata(ctx, userID, conversationID, message)
	}

	return &AdvisingResponse{
		Agent:                  AgentTypeAdvisor,
		UserID:                 userID,
		ConversationID:         conversationID,
		Response:               result.Content,
		Timestamp:              s.now().UTC(),
		ProfileUsed:            true,
		CoursesReferenced:      len(relevant.Courses),
		DegreeRequirementsUsed: relevant.Requirement != nil,
		StudentMajor:           profile.Major,
		StudentYear:            profile.AcademicYear,
		University:             institution,
	}, nil
}

// ensureConversationMetadata backfills title and agent tag on a
// conversation that was implicitly created by the first append.
func (s *advisingService) ensureConversationMetadata(ctx context.Context, userID, conversationID, firstMessage string) {
	title := firstMessage
	if len(title) > conversationTitleLimit {
		title = title[:conversationTitleLimit]
	}

	if err := s.conversations.SetMetadata(ctx, userID, conversationID, title, AgentTypeAdvisor); err != nil {
		s.logger.Debug("Failed to backfill conversation metadata",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
	}
}
