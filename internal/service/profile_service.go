package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"showbiz/internal/cache"
	"showbiz/internal/errors"
	"showbiz/internal/media"
	"showbiz/internal/model"
	"showbiz/internal/repository"
)

// Upload is one image file from a profile update.
type Upload struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// ProfileUpdate merges into a profile. Empty strings and nil pointers leave the
// current value untouched. Talent-only fields are ignored for hirers and the other
// way round.
type ProfileUpdate struct {
	Name        string
	Email       string
	Phone       string
	DeviceToken string
	Age         *int

	Height               string
	Weight               string
	BodyType             string
	SkinTone             string
	Language             string
	Skills               string
	MakeoverNeeded       *bool
	WillingToWorkAsExtra *bool
	AboutYourself        string
	Video                string

	Country string
	City    string

	Images map[model.ImageSlot]Upload
}

// Profile is an account with its kind-specific details.
type Profile struct {
	Account model.PublicAccount  `json:"account"`
	Talent  *model.TalentProfile `json:"talent,omitempty"`
	Hirer   *model.HirerProfile  `json:"hirer,omitempty"`
}

// ProfileService reads and edits profiles.
type ProfileService interface {
	GetProfile(ctx context.Context, kind model.Kind, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, kind model.Kind, id uuid.UUID, upd ProfileUpdate) (*Profile, error)
}

type profileService struct {
	accounts    repository.AccountRepository
	profiles    repository.ProfileRepository
	media       media.Store
	cache       *cache.Client
	logger      *slog.Logger
	phoneRegion string
}

// NewProfileService creates a new profile service. A nil store rejects image uploads.
func NewProfileService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	store media.Store,
	cache *cache.Client,
	logger *slog.Logger,
	phoneRegion string,
) ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{
		accounts:    accounts,
		profiles:    profiles,
		media:       store,
		cache:       cache,
		logger:      logger,
		phoneRegion: phoneRegion,
	}
}

// GetProfile retrieves a profile with caching. Hirers must be approved.
func (s *profileService) GetProfile(ctx context.Context, kind model.Kind, id uuid.UUID) (*Profile, error) {
	var cached Profile
	if s.cache.GetJSON(ctx, profileCacheKey(kind, id), &cached) {
		return &cached, nil
	}

	account, err := loadApproved(ctx, s.accounts, kind, id)
	if err != nil {
		return nil, err
	}

	profile, err := s.build(ctx, account)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, profileCacheKey(kind, id), profile, profileCacheTTL)
	return profile, nil
}

func (s *profileService) build(ctx context.Context, account *model.Account) (*Profile, error) {
	profile := &Profile{Account: account.Public()}
	switch account.Kind {
	case model.KindTalent:
		details, err := s.profiles.GetTalent(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("get talent profile: %w", err)
		}
		profile.Talent = details
	case model.KindHirer:
		details, err := s.profiles.GetHirer(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("get hirer profile: %w", err)
		}
		profile.Hirer = details
	}
	return profile, nil
}

// UpdateProfile merges upd into the profile, uploading any images first. Objects of
// replaced images are deleted once the new URLs are stored.
func (s *profileService) UpdateProfile(ctx context.Context, kind model.Kind, id uuid.UUID, upd ProfileUpdate) (*Profile, error) {
	account, err := loadApproved(ctx, s.accounts, kind, id)
	if err != nil {
		return nil, err
	}

	accountFields, err := s.accountFields(ctx, account, upd)
	if err != nil {
		return nil, err
	}

	var (
		talent  *model.TalentProfile
		hirer   *model.HirerProfile
		changed = len(accountFields) > 0
	)
	if upd.Age != nil && *upd.Age < 0 {
		return nil, errors.Validation("age must not be negative")
	}
	switch kind {
	case model.KindTalent:
		if talent, err = s.profiles.GetTalent(ctx, id); err != nil {
			return nil, fmt.Errorf("get talent profile: %w", err)
		}
		changed = mergeTalent(talent, upd) || changed
	case model.KindHirer:
		if hirer, err = s.profiles.GetHirer(ctx, id); err != nil {
			return nil, fmt.Errorf("get hirer profile: %w", err)
		}
		changed = mergeHirer(hirer, upd) || changed
	}

	uploads := allowedUploads(kind, upd.Images)
	if !changed && len(uploads) == 0 {
		return nil, errors.Validation("at least one field, image, or video URL must be provided for update")
	}
	if len(uploads) > 0 && s.media == nil {
		return nil, errors.Validation("image uploads are not configured")
	}

	var replaced, uploaded []string
	for _, slot := range model.ImageSlots(kind) {
		up, ok := uploads[slot]
		if !ok {
			continue
		}
		key := media.ObjectKey(string(kind), id)
		url, err := s.media.Put(ctx, key, up.Body, up.Size, up.ContentType)
		if err != nil {
			s.deleteObjects(ctx, uploaded, "delete orphaned image")
			return nil, fmt.Errorf("upload %s image: %w", slot, err)
		}
		uploaded = append(uploaded, key)
		if old := setImage(slot, account, talent, accountFields, url, key); old != "" {
			replaced = append(replaced, old)
		}
	}

	if len(accountFields) > 0 {
		updated, err := s.accounts.Update(ctx, kind, id, accountFields)
		if err != nil {
			s.deleteObjects(ctx, uploaded, "delete orphaned image")
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errors.ErrEmailInUse
			}
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, accountNotFound(kind)
			}
			return nil, fmt.Errorf("update %s: %w", kind, err)
		}
		account = updated
	}
	switch {
	case talent != nil:
		err = s.profiles.SaveTalent(ctx, talent)
	case hirer != nil:
		err = s.profiles.SaveHirer(ctx, hirer)
	}
	if err != nil {
		// The account row is already saved and may reference a new profile picture.
		invalidateProfile(ctx, s.cache, kind, id)
		var orphaned []string
		for _, key := range uploaded {
			if key != account.ProfilePicKey {
				orphaned = append(orphaned, key)
			}
		}
		s.deleteObjects(ctx, orphaned, "delete orphaned image")
		return nil, fmt.Errorf("save %s profile: %w", kind, err)
	}

	invalidateProfile(ctx, s.cache, kind, id)
	s.deleteObjects(ctx, replaced, "delete replaced image")

	return &Profile{Account: account.Public(), Talent: talent, Hirer: hirer}, nil
}

func (s *profileService) accountFields(ctx context.Context, account *model.Account, upd ProfileUpdate) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if name := strings.TrimSpace(upd.Name); name != "" && name != account.Name {
		fields["name"] = name
	}
	if strings.TrimSpace(upd.Email) != "" {
		email, err := normalizeEmail(upd.Email)
		if err != nil {
			return nil, err
		}
		if email != account.Email {
			other, err := s.accounts.FindByEmail(ctx, account.Kind, email)
			switch {
			case err == nil && other.ID != account.ID:
				return nil, errors.ErrEmailInUse
			case err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound):
				return nil, fmt.Errorf("find %s: %w", account.Kind, err)
			}
			fields["email"] = email
		}
	}
	if strings.TrimSpace(upd.Phone) != "" {
		phone, err := normalizePhone(upd.Phone, s.phoneRegion)
		if err != nil {
			return nil, err
		}
		if phone != account.Phone {
			fields["phone"] = phone
		}
	}
	if token := strings.TrimSpace(upd.DeviceToken); token != "" && token != account.DeviceToken {
		fields["device_token"] = token
	}
	return fields, nil
}

func mergeString(dst *string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*dst = v
	return true
}

func mergeTalent(p *model.TalentProfile, upd ProfileUpdate) bool {
	changed := false
	if upd.Age != nil {
		age := *upd.Age
		p.Age = &age
		changed = true
	}
	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&p.Height, upd.Height},
		{&p.Weight, upd.Weight},
		{&p.BodyType, upd.BodyType},
		{&p.SkinTone, upd.SkinTone},
		{&p.Language, upd.Language},
		{&p.Skills, upd.Skills},
		{&p.AboutYourself, upd.AboutYourself},
		{&p.VideoURL, upd.Video},
	} {
		changed = mergeString(f.dst, f.v) || changed
	}
	if upd.MakeoverNeeded != nil {
		p.MakeoverNeeded = *upd.MakeoverNeeded
		changed = true
	}
	if upd.WillingToWorkAsExtra != nil {
		p.WillingToWorkAsExtra = *upd.WillingToWorkAsExtra
		changed = true
	}
	return changed
}

func mergeHirer(p *model.HirerProfile, upd ProfileUpdate) bool {
	changed := false
	if upd.Age != nil {
		age := *upd.Age
		p.Age = &age
		changed = true
	}
	changed = mergeString(&p.Country, upd.Country) || changed
	changed = mergeString(&p.City, upd.City) || changed
	return changed
}

func allowedUploads(kind model.Kind, images map[model.ImageSlot]Upload) map[model.ImageSlot]Upload {
	out := make(map[model.ImageSlot]Upload, len(images))
	for _, slot := range model.ImageSlots(kind) {
		if up, ok := images[slot]; ok && up.Body != nil {
			out[slot] = up
		}
	}
	return out
}

func (s *profileService) deleteObjects(ctx context.Context, keys []string, msg string) {
	for _, key := range keys {
		if err := s.media.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, msg, "key", key, "error", err)
		}
	}
}

// setImage records the new image location and returns the key of the object it replaces.
func setImage(slot model.ImageSlot, account *model.Account, talent *model.TalentProfile, fields map[string]interface{}, url, key string) string {
	var old string
	switch slot {
	case model.ImageProfilePic:
		old = account.ProfilePicKey
		fields["profile_pic_url"] = url
		fields["profile_pic_key"] = key
	case model.ImageFront:
		old, talent.FrontURL, talent.FrontKey = talent.FrontKey, url, key
	case model.ImageLeft:
		old, talent.LeftURL, talent.LeftKey = talent.LeftKey, url, key
	case model.ImageRight:
		old, talent.RightURL, talent.RightKey = talent.RightKey, url, key
	}
	return old
}
