package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	GoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)

	ListTestimonies(ctx context.Context, filter models.TestimonyFilter) (*models.TestimonyPage, error)
	GetTestimony(ctx context.Context, id int) (*models.Testimony, error)
	GetDrafts(ctx context.Context) ([]models.Testimony, error)
	CreateTestimony(ctx context.Context, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error)
	UpdateTestimony(ctx context.Context, id int, req *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error)
	CreateTestimonyForm(ctx context.Context, body io.Reader, contentType string) (*models.Testimony, error)
	UpdateTestimonyForm(ctx context.Context, id int, body io.Reader, contentType string) (*models.Testimony, error)

	UploadImage(ctx context.Context, file *models.LocalFile) (*models.ImageUploadResponse, error)
	UploadAudio(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error)
	UploadVideo(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error)
}
