package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"showbiz/internal/errors"
	"showbiz/internal/model"
	"showbiz/internal/service"
)

// AccountHandler handles the profile endpoints of one account kind.
type AccountHandler struct {
	kind     model.Kind
	profiles service.ProfileService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(kind model.Kind, profiles service.ProfileService) *AccountHandler {
	return &AccountHandler{kind: kind, profiles: profiles}
}

// UpdateProfileRequest is the JSON form of a profile update. Multipart requests use
// the same field names and may attach images under front, left, right and profilePic.
type UpdateProfileRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email" validate:"omitempty,email"`
	Phone                string `json:"phone"`
	DeviceToken          string `json:"deviceToken"`
	Age                  *int   `json:"age"`
	Height               string `json:"height"`
	Weight               string `json:"weight"`
	BodyType             string `json:"bodyType"`
	SkinTone             string `json:"skinTone"`
	Language             string `json:"language"`
	Skills               string `json:"skills"`
	MakeoverNeeded       *bool  `json:"makeoverNeeded"`
	WillingToWorkAsExtra *bool  `json:"willingToWorkAsExtra"`
	AboutYourself        string `json:"aboutYourself"`
	Video                string `json:"video"`
	Country              string `json:"country"`
	City                 string `json:"city"`
}

func (r UpdateProfileRequest) toUpdate() service.ProfileUpdate {
	return service.ProfileUpdate{
		Name:                 r.Name,
		Email:                r.Email,
		Phone:                r.Phone,
		DeviceToken:          r.DeviceToken,
		Age:                  r.Age,
		Height:               r.Height,
		Weight:               r.Weight,
		BodyType:             r.BodyType,
		SkinTone:             r.SkinTone,
		Language:             r.Language,
		Skills:               r.Skills,
		MakeoverNeeded:       r.MakeoverNeeded,
		WillingToWorkAsExtra: r.WillingToWorkAsExtra,
		AboutYourself:        r.AboutYourself,
		Video:                r.Video,
		Country:              r.Country,
		City:                 r.City,
	}
}

// ProfileResponse wraps a profile.
type ProfileResponse struct {
	Message string           `json:"message,omitempty"`
	Profile *service.Profile `json:"profile"`
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /talent/get-profile [get]
// @Router /hirer/get-profile [get]
func (h *AccountHandler) GetProfile(c echo.Context) error {
	claims, err := claimsOf(c, h.kind)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetProfile(c.Request().Context(), h.kind, claims.AccountID)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Accepts JSON or multipart/form-data. Multipart requests may attach images.
// @Tags profile
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest false "Profile fields"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /talent/update-profile [put]
// @Router /hirer/update-profile [put]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	claims, err := claimsOf(c, h.kind)
	if err != nil {
		return err
	}

	var upd service.ProfileUpdate
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var closers []io.Closer
		defer func() {
			for _, cl := range closers {
				_ = cl.Close()
			}
		}()
		upd, closers, err = h.multipartUpdate(c)
		if err != nil {
			return err
		}
	} else {
		var req UpdateProfileRequest
		if err := bindValid(c, &req); err != nil {
			return err
		}
		upd = req.toUpdate()
	}

	profile, err := h.profiles.UpdateProfile(c.Request().Context(), h.kind, claims.AccountID, upd)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, ProfileResponse{Message: "profile updated successfully", Profile: profile})
}

func (h *AccountHandler) multipartUpdate(c echo.Context) (service.ProfileUpdate, []io.Closer, error) {
	upd := service.ProfileUpdate{
		Name:          c.FormValue("name"),
		Email:         c.FormValue("email"),
		Phone:         c.FormValue("phone"),
		DeviceToken:   c.FormValue("deviceToken"),
		Height:        c.FormValue("height"),
		Weight:        c.FormValue("weight"),
		BodyType:      c.FormValue("bodyType"),
		SkinTone:      c.FormValue("skinTone"),
		Language:      c.FormValue("language"),
		Skills:        c.FormValue("skills"),
		AboutYourself: c.FormValue("aboutYourself"),
		Video:         c.FormValue("video"),
		Country:       c.FormValue("country"),
		City:          c.FormValue("city"),
	}

	if v := strings.TrimSpace(c.FormValue("age")); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return upd, nil, fail(errors.Validation("age must be a number"))
		}
		upd.Age = &age
	}
	for name, dst := range map[string]**bool{
		"makeoverNeeded":       &upd.MakeoverNeeded,
		"willingToWorkAsExtra": &upd.WillingToWorkAsExtra,
	} {
		if v := strings.TrimSpace(c.FormValue(name)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return upd, nil, fail(errors.Validation(name + " must be true or false"))
			}
			*dst = &b
		}
	}

	var closers []io.Closer
	for _, slot := range model.ImageSlots(h.kind) {
		fh, err := c.FormFile(string(slot))
		if err != nil {
			if err == http.ErrMissingFile {
				continue
			}
			return upd, closers, invalidBody()
		}
		contentType := fh.Header.Get(echo.HeaderContentType)
		if !strings.HasPrefix(contentType, "image/") {
			return upd, closers, fail(errors.Validation(string(slot) + " must be an image"))
		}
		f, err := fh.Open()
		if err != nil {
			return upd, closers, invalidBody()
		}
		closers = append(closers, f)
		if upd.Images == nil {
			upd.Images = map[model.ImageSlot]service.Upload{}
		}
		upd.Images[slot] = service.Upload{Body: f, Size: fh.Size, ContentType: contentType}
	}
	return upd, closers, nil
}
