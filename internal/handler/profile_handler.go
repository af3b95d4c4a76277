package handler

import (
	"net/http"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/app/storage"
	"mentorlink/internal/pkg/auth/bearer"
	"mentorlink/internal/pkg/auth/jwt"
	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/logx"
	"mentorlink/internal/pkg/req"
	"mentorlink/internal/pkg/resp"
)

// editableProfileFields are the only keys forwarded on profile update.
var editableProfileFields = []string{"name", "bio", "avatar", "interests", "title", "company", "expertise", "hourlyRate", "availability"}

// HandleGetProfile returns the caller's reshaped profile.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/profile", nil)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch profile")
			return
		}

		profile, err := mapping.User.One(payload, "user", "profile")
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch profile")
			return
		}

		resp.RespondSuccess(w, r, profile)
	}
}

// HandleUpdateProfile forwards the editable subset of the body.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		if customErr := req.BindJSON(r, &body); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		update := make(map[string]any)
		for _, key := range editableProfileFields {
			if v, ok := body[key]; ok {
				update[key] = v
			}
		}
		if len(update) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		payload, err := deps.Backend.Send(r.Context(), http.MethodPut, authHeader(r), "/api/profile", update)
		if err != nil {
			respondUpstream(w, r, err, "Failed to update profile")
			return
		}

		profile, err := mapping.User.One(payload, "user", "profile")
		if err != nil {
			respondUpstream(w, r, err, "Failed to update profile")
			return
		}

		resp.RespondSuccess(w, r, profile)
	}
}

// PresignAvatarResponse is returned by HandlePresignAvatar.
type PresignAvatarResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// HandlePresignAvatar issues a presigned PUT for a new profile photo.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		body, customErr := req.BindFields(r, "fileName", "mimeType", "fileSize")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fileSize, ok := req.Number(body, "fileSize")
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		fileName := req.String(body, "fileName")
		mimeType := req.String(body, "mimeType")
		if customErr := storage.ValidateAvatar(fileName, mimeType, int64(fileSize)); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// The backend owns the user; the claims only namespace the key.
		var userID string
		if payload, err := jwt.ParseUnverified(bearer.Token(authHeader(r))); err == nil {
			userID = payload.UserID()
		}

		key := storage.AvatarKey(userID, fileName)
		uploadURL, err := deps.Storage.PresignUpload(r.Context(), key, mimeType, int64(fileSize), storage.PresignExpiry)
		if err != nil {
			logx.Error(err, "Avatar presign failed", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, PresignAvatarResponse{
			UploadURL: uploadURL,
			Key:       key,
			URL:       deps.Storage.PublicURL(key),
			ExpiresIn: int(storage.PresignExpiry.Seconds()),
		})
	}
}
