package images

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/justArale/recipe-book-server/core"
	"github.com/justArale/recipe-book-server/handlers/auth"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20 // 10 MiB

// Image formats accepted for upload, matching what the frontend sends.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/webm": true,
	"image/heic": true,
}

type uploadResponse struct {
	FileURL string `json:"fileUrl"`
	PathKey string `json:"pathKey"`
}

// HandleUploadRecipeImage stores a recipe image binary. Uploading has no
// dependency on any entity state; the returned reference is attached to a
// recipe in a separate, authorized update.
func HandleUploadRecipeImage(blobs core.BlobStore) http.HandlerFunc {
	return handleUpload(blobs, core.RecipeImageFolder)
}

// HandleUploadAvatar stores an avatar binary.
func HandleUploadAvatar(blobs core.BlobStore) http.HandlerFunc {
	return handleUpload(blobs, core.AvatarFolder)
}

func handleUpload(blobs core.BlobStore, folder string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.ClaimsFromContext(r.Context()); !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "No file uploaded"})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "No file uploaded"})
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !allowedContentTypes[contentType] {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Unsupported image format"})
			return
		}

		ref, err := blobs.Upload(r.Context(), file, folder, contentType)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"folder": folder,
			}).Error("Failed to upload image")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to upload image"})
			return
		}

		render.JSON(w, r, uploadResponse{FileURL: ref.URL, PathKey: ref.Key})
	}
}
