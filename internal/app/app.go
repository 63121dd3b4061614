package app

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/phenrril/modaviva/internal/adapters/events"
	"github.com/phenrril/modaviva/internal/adapters/generation/gemini"
	"github.com/phenrril/modaviva/internal/adapters/httpserver"
	"github.com/phenrril/modaviva/internal/adapters/imagefetch"
	"github.com/phenrril/modaviva/internal/adapters/repo/postgres"
	"github.com/phenrril/modaviva/internal/adapters/storage/localfs"
	s3storage "github.com/phenrril/modaviva/internal/adapters/storage/s3"
	"github.com/phenrril/modaviva/internal/adapters/tagging"
	"github.com/phenrril/modaviva/internal/domain"
	"github.com/phenrril/modaviva/internal/usecase"
)

type App struct {
	DB         *gorm.DB
	Bus        *events.Bus
	ProductUC  *usecase.ProductUC
	SizingUC   *usecase.SizingUC
	StyleUC    *usecase.StyleUC
	OutfitUC   *usecase.OutfitUC
	TryOnUC    *usecase.TryOnUC
	Customers  domain.CustomerRepo
	UserImages domain.UserImageRepo
	Storage    domain.FileStorage
	Vocab      domain.Vocabulary
	Tagger     httpserver.CatalogTagger
	OAuth      *oauth2.Config
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	custRepo := postgres.NewCustomerRepo(db)
	measRepo := postgres.NewMeasurementRepo(db)
	profileRepo := postgres.NewStyleProfileRepo(db)
	imageRepo := postgres.NewUserImageRepo(db)
	outfitRepo := postgres.NewOutfitRepo(db)
	tryonRepo := postgres.NewTryOnRepo(db)

	storage, err := buildStorage()
	if err != nil {
		return nil, err
	}

	vocab := domain.DefaultVocabulary()
	bus := events.NewBus()
	downloader := imagefetch.New()

	var generator domain.TryOnGenerator
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		generator = gemini.New(key, os.Getenv("GEMINI_MODEL"))
	} else {
		log.Warn().Msg("GEMINI_API_KEY faltante, la prueba virtual va a fallar en la generación")
	}

	var tagger httpserver.CatalogTagger
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		tagger = tagging.New(key, vocab)
	}

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	app := &App{DB: db, Bus: bus, Vocab: vocab, Tagger: tagger, OAuth: oauthCfg}
	app.Customers = custRepo
	app.UserImages = imageRepo
	app.Storage = storage
	app.ProductUC = &usecase.ProductUC{Products: prodRepo}
	app.SizingUC = &usecase.SizingUC{
		Products:     prodRepo,
		Measurements: measRepo,
		Chart:        domain.DefaultSizeChart(),
	}
	app.StyleUC = &usecase.StyleUC{Profiles: profileRepo, Products: prodRepo, Vocab: vocab}
	app.OutfitUC = &usecase.OutfitUC{Outfits: outfitRepo, Products: prodRepo, Events: bus}
	app.TryOnUC = &usecase.TryOnUC{
		TryOns:     tryonRepo,
		Products:   prodRepo,
		Customers:  custRepo,
		UserImages: imageRepo,
		Storage:    storage,
		Downloader: downloader,
		Generator:  generator,
		Events:     bus,
	}
	return app, nil
}

func buildStorage() (domain.FileStorage, error) {
	driver := strings.ToLower(os.Getenv("STORAGE_DRIVER"))
	if driver == "s3" {
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = "us-east-1"
		}
		return s3storage.New(context.Background(), region, os.Getenv("AWS_BUCKET_NAME"), "modaviva")
	}
	storageDir := os.Getenv("STORAGE_DIR")
	if storageDir == "" {
		storageDir = "uploads"
	}
	_ = os.MkdirAll(storageDir, 0755)
	return localfs.New(storageDir), nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Products:   a.ProductUC,
		Sizing:     a.SizingUC,
		Styles:     a.StyleUC,
		Outfits:    a.OutfitUC,
		TryOns:     a.TryOnUC,
		Customers:  a.Customers,
		UserImages: a.UserImages,
		Storage:    a.Storage,
		Vocab:      a.Vocab,
		Tagger:     a.Tagger,
		OAuth:      a.OAuth,
	})
}

// StartWorkers levanta el consumidor de la cola de generación y un logger de
// eventos de dominio. Se cortan cancelando ctx.
func (a *App) StartWorkers(ctx context.Context) error {
	jobs, err := a.Bus.Subscribe(ctx, domain.TopicTryOnGenerate)
	if err != nil {
		return err
	}
	go func() {
		for msg := range jobs {
			var payload struct {
				ID uuid.UUID `json:"id"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				log.Error().Err(err).Msg("payload de generación inválido")
				msg.Ack()
				continue
			}
			if _, err := a.TryOnUC.StartGeneration(ctx, payload.ID); err != nil {
				log.Error().Err(err).Str("tryon_id", payload.ID.String()).Msg("generación fallida")
			}
			msg.Ack()
		}
	}()

	updates, err := a.Bus.Subscribe(ctx, domain.TopicTryOnUpdated)
	if err != nil {
		return err
	}
	go func() {
		for msg := range updates {
			log.Info().RawJSON("event", msg.Payload).Str("topic", domain.TopicTryOnUpdated).Msg("evento")
			msg.Ack()
		}
	}()

	created, err := a.Bus.Subscribe(ctx, domain.TopicOutfitCreated)
	if err != nil {
		return err
	}
	go func() {
		for msg := range created {
			log.Info().RawJSON("event", msg.Payload).Str("topic", domain.TopicOutfitCreated).Msg("evento")
			msg.Ack()
		}
	}()
	return nil
}
