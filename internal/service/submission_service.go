package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"showbiz/internal/errors"
	"showbiz/internal/model"
	"showbiz/internal/repository"
)

// HirerSummary identifies the author of a submission.
type HirerSummary struct {
	ID         uuid.UUID `json:"_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	ProfilePic *string   `json:"profilePic"`
}

// SubmissionView is a submission with its author.
type SubmissionView struct {
	ID          uuid.UUID    `json:"_id"`
	Subject     string       `json:"subject"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	Hirer       HirerSummary `json:"hirer"`
}

// SubmissionService manages casting calls posted by approved hirers.
type SubmissionService interface {
	Create(ctx context.Context, hirerID uuid.UUID, subject, description string) (*SubmissionView, error)
	Update(ctx context.Context, hirerID, submissionID uuid.UUID, subject, description string) (*SubmissionView, error)
	Delete(ctx context.Context, hirerID, submissionID uuid.UUID) error
	List(ctx context.Context) ([]SubmissionView, error)
	// ListByHirer lists hirerID's submissions. Callers may only list their own.
	ListByHirer(ctx context.Context, callerID, hirerID uuid.UUID) ([]SubmissionView, error)
}

type submissionService struct {
	accounts    repository.AccountRepository
	submissions repository.SubmissionRepository
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(accounts repository.AccountRepository, submissions repository.SubmissionRepository) SubmissionService {
	return &submissionService{accounts: accounts, submissions: submissions}
}

func hirerSummary(a *model.Account) HirerSummary {
	return HirerSummary{
		ID:         a.ID,
		Name:       a.Name,
		Role:       a.Role,
		ProfilePic: optional(a.ProfilePicURL),
	}
}

func submissionView(sub *model.Submission, author *model.Account) SubmissionView {
	return SubmissionView{
		ID:          sub.ID,
		Subject:     sub.Subject,
		Description: sub.Description,
		CreatedAt:   sub.CreatedAt,
		Hirer:       hirerSummary(author),
	}
}

func (s *submissionService) Create(ctx context.Context, hirerID uuid.UUID, subject, description string) (*SubmissionView, error) {
	hirer, err := loadApproved(ctx, s.accounts, model.KindHirer, hirerID)
	if err != nil {
		return nil, err
	}

	subject, description = strings.TrimSpace(subject), strings.TrimSpace(description)
	if subject == "" || description == "" {
		return nil, errors.Validation("subject and description are required")
	}

	sub := &model.Submission{HirerID: hirer.ID, Subject: subject, Description: description}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	view := submissionView(sub, hirer)
	return &view, nil
}

// owned checks ownership before approval, so other hirers' submissions look missing.
func (s *submissionService) owned(ctx context.Context, hirerID, submissionID uuid.UUID) (*model.Account, error) {
	if _, err := s.submissions.FindOwned(ctx, submissionID, hirerID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return loadApproved(ctx, s.accounts, model.KindHirer, hirerID)
}

func (s *submissionService) Update(ctx context.Context, hirerID, submissionID uuid.UUID, subject, description string) (*SubmissionView, error) {
	hirer, err := s.owned(ctx, hirerID, submissionID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if v := strings.TrimSpace(subject); v != "" {
		fields["subject"] = v
	}
	if v := strings.TrimSpace(description); v != "" {
		fields["description"] = v
	}
	if len(fields) == 0 {
		return nil, errors.Validation("subject or description is required")
	}

	sub, err := s.submissions.UpdateOwned(ctx, submissionID, hirerID, fields)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("update submission: %w", err)
	}

	view := submissionView(sub, hirer)
	return &view, nil
}

func (s *submissionService) Delete(ctx context.Context, hirerID, submissionID uuid.UUID) error {
	if _, err := s.owned(ctx, hirerID, submissionID); err != nil {
		return err
	}

	ok, err := s.submissions.DeleteOwned(ctx, submissionID, hirerID)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if !ok {
		return errors.ErrSubmissionNotFound
	}
	return nil
}

func (s *submissionService) List(ctx context.Context) ([]SubmissionView, error) {
	subs, err := s.submissions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(subs) == 0 {
		return nil, errors.NotFound("no submissions found")
	}

	views := make([]SubmissionView, len(subs))
	for i := range subs {
		views[i] = submissionView(&subs[i], &subs[i].Hirer)
	}
	return views, nil
}

func (s *submissionService) ListByHirer(ctx context.Context, callerID, hirerID uuid.UUID) ([]SubmissionView, error) {
	caller, err := loadApproved(ctx, s.accounts, model.KindHirer, callerID)
	if err != nil {
		return nil, err
	}
	if caller.ID != hirerID {
		return nil, errors.Forbidden("not authorized to view submissions for this hirer")
	}

	subs, err := s.submissions.ListByHirer(ctx, hirerID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(subs) == 0 {
		return nil, errors.NotFound("no submissions found for this hirer")
	}

	views := make([]SubmissionView, len(subs))
	for i := range subs {
		views[i] = submissionView(&subs[i], caller)
	}
	return views, nil
}
