package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipcheck/clipcheck/internal/errs"
)

// jobIDHeader carries the stored-run id on /video/verify responses. The body
// stays exactly the documented envelope.
const jobIDHeader = "X-Job-Id"

type transcribeRequest struct {
	AudioPath string `json:"audio_path"`
}

type extractRequest struct {
	Text string `json:"text"`
}

type verifyRequest struct {
	Claim string `json:"claim"`
}

func (s *Server) handlePing(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// handleVerifyVideo runs the whole pipeline: one uploaded video in, one
// result envelope or one error envelope out. No partial-success shape exists.
func (s *Server) handleVerifyVideo(c *gin.Context) {
	videoPath, err := s.saveUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer func() { _ = os.Remove(videoPath) }()

	result, err := s.deps.Runner.Run(c.Request.Context(), videoPath)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if s.deps.Store != nil {
		jobID := uuid.NewString()
		s.deps.Store.Put(jobID, result)
		c.Header(jobIDHeader, jobID)
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleUpload(c *gin.Context) {
	videoPath, err := s.saveUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	audioPath, err := s.deps.Audio.ExtractAudio(c.Request.Context(), videoPath)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "video": videoPath, "audio": audioPath})
}

func (s *Server) handleTranscribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.Input("server.stt", "invalid json"))
		return
	}
	if req.AudioPath == "" {
		s.respondError(c, errs.Input("server.stt", "invalid audio path"))
		return
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		s.respondError(c, errs.Input("server.stt", "invalid audio path"))
		return
	}

	text, err := s.deps.Transcriber.Transcribe(c.Request.Context(), req.AudioPath)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "text": text})
}

func (s *Server) handleExtractClaims(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.Input("server.claims", "invalid json"))
		return
	}
	if err := s.validate.Text(req.Text); err != nil {
		s.respondError(c, err)
		return
	}

	claims, err := s.deps.Claims.Extract(c.Request.Context(), req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "claims": claims})
}

func (s *Server) handleVerifyClaim(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.Input("server.verify", "invalid json"))
		return
	}
	if err := s.validate.Claim(req.Claim); err != nil {
		s.respondError(c, err)
		return
	}

	verdict, err := s.deps.Verifier.Verify(c.Request.Context(), req.Claim)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "verdict": verdict})
}

func (s *Server) handleResult(c *gin.Context) {
	if s.deps.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result store disabled"})
		return
	}

	result, found := s.deps.Store.Get(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// saveUpload validates the multipart video field and stores it under the
// upload dir with a fresh id so concurrent requests never collide.
func (s *Server) saveUpload(c *gin.Context) (string, error) {
	file, err := c.FormFile("video")
	if err != nil {
		return "", errs.Input("server.upload", "no video uploaded")
	}
	if err := s.validate.Upload(file.Filename, file.Size, s.cfg.MaxUploadBytes); err != nil {
		return "", err
	}

	dst := filepath.Join(s.cfg.UploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := saveFile(c, file, dst); err != nil {
		return "", errs.E(errs.KindInternal, "server.upload", fmt.Errorf("store upload: %w", err))
	}
	return dst, nil
}

func saveFile(c *gin.Context, file *multipart.FileHeader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return c.SaveUploadedFile(file, dst)
}

// respondError is the single error boundary: log once, answer with the
// uniform error envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	s.log.Error().Err(err).Str("kind", string(errs.KindOf(err))).Int("status", status).Msg("request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}
