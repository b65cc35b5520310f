package relay

import (
	"fmt"
	"net/http"

	"github.com/freetocompute/pgpkeeper/config/configkey"
	"github.com/freetocompute/pgpkeeper/pkg/manager"
	"github.com/freetocompute/pgpkeeper/pkg/middleware"
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Server exposes encrypt/decrypt over HTTP for local automation. It is a
// thin wrapper over the manager; all key state stays in the local store.
type Server struct {
	manager *manager.Manager
}

func NewServer(m *manager.Manager) *Server {
	return &Server{manager: m}
}

type encryptRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Sign      bool   `json:"sign"`
}

type decryptRequest struct {
	Message    string `json:"message"`
	Passphrase string `json:"passphrase"`
}

func (s *Server) Run() {
	r := gin.Default()
	if viper.GetBool(configkey.DebugMode) {
		logrus.Info("Debug mode enabled")
		r.Use(middleware.RequestLoggerMiddleware())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "PGPKEEPER: PAGE_NOT_FOUND", "message": "Page not found"})
	})

	s.SetupEndpoints(r)

	port := viper.GetInt(configkey.RelayPort)
	logrus.Infof("relay listening on :%d", port)
	_ = r.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) SetupEndpoints(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.POST("/encrypt", s.encrypt)
	v1.POST("/decrypt", s.decrypt)
}

// encrypt encrypts to a stored contact, or to self when no recipient is
// given. Signing uses the default keypair and only works when its
// passphrase is already cached or the key is unprotected; the relay never
// prompts.
func (s *Server) encrypt(c *gin.Context) {
	var req encryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var armored string
	var err error
	if req.Recipient == "" {
		armored, err = s.manager.EncryptToSelf(req.Message)
	} else {
		armored, err = s.manager.EncryptToContact(req.Recipient, req.Message, req.Sign, nil)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, manager.ErrNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, manager.ErrNoDefaultKeypair) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": armored})
}

func (s *Server) decrypt(c *gin.Context) {
	var req decryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A passphrase in the request acts as the one prompt attempt.
	var promptFn manager.PassphraseFunc
	if req.Passphrase != "" {
		promptFn = func(*models.Keypair) (string, error) { return req.Passphrase, nil }
	}

	plaintext, err := s.manager.Decrypt(req.Message, promptFn)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, manager.ErrIncorrectPassphrase) {
			status = http.StatusUnauthorized
		} else if errors.Is(err, manager.ErrNoDefaultKeypair) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": plaintext})
}
