package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wardrobe/internal/capture"
	"wardrobe/internal/garments"
	"wardrobe/internal/imageref"
	"wardrobe/internal/infra"
	"wardrobe/internal/normalize"
	"wardrobe/internal/storage"
	"wardrobe/internal/tryon"
)

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	_ = godotenv.Load()
	cfg := infra.LoadClientConfig()

	var (
		photoFlag    string
		cameraFlag   string
		garmentFlags listFlag
		deepLinkFlag string
		itemsFlag    string
		proxyFlag    string
		outFlag      string
		timeoutFlag  time.Duration
	)
	flag.StringVar(&photoFlag, "photo", "", "subject photo: a local file, URL or data URI")
	flag.StringVar(&cameraFlag, "camera", "", "image file to use as the capture device instead of -photo")
	flag.Var(&garmentFlags, "garment", "garment image reference (repeatable)")
	flag.StringVar(&deepLinkFlag, "deeplink", "", "deep-link query string, e.g. outfit=a|b or items=3,7")
	flag.StringVar(&itemsFlag, "items", "", "comma separated wardrobe item ids")
	flag.StringVar(&proxyFlag, "proxy", cfg.ProxyURL, "try-on proxy endpoint")
	flag.StringVar(&outFlag, "out", cfg.DownloadDir, "directory the result image is saved to")
	flag.DurationVar(&timeoutFlag, "timeout", cfg.TryOnTimeout, "attempt deadline (0 waits indefinitely)")
	flag.Parse()

	logger := infra.NewLogger(cfg.AppEnv)

	set := garments.New()
	if deepLinkFlag != "" {
		params, err := url.ParseQuery(strings.TrimPrefix(deepLinkFlag, "?"))
		if err != nil {
			exitWithError(fmt.Errorf("parse -deeplink: %w", err))
		}
		set.SeedFromDeepLink(params)
	}
	set.Add(garmentFlags...)
	ids, err := parseIDs(itemsFlag)
	if err != nil {
		exitWithError(err)
	}
	set.AddWardrobeItems(ids...)

	httpClient := &http.Client{}
	norm := normalize.New(normalize.Options{
		HTTPClient: httpClient,
		Resolver:   imageref.Resolver{StorageBaseURL: cfg.BackendURL, Origin: cfg.PublicOrigin},
		Logger:     &logger,
	})

	session, err := tryon.NewSession(tryon.Options{
		Client:     tryon.NewProxyClient(proxyFlag, httpClient),
		Normalizer: norm,
		Garments:   set,
		Resize:     normalize.ResizeOptions{MaxDimension: cfg.MaxDimension, Quality: cfg.JPEGQuality},
		Timeout:    timeoutFlag,
		Logger:     &logger,
	})
	if err != nil {
		exitWithError(err)
	}
	defer session.Close()

	ctx := context.Background()
	switch {
	case cameraFlag != "":
		dev, err := capture.OpenFile(cameraFlag)
		if err != nil {
			exitWithError(err)
		}
		session.StartCamera(dev)
		if err := session.CapturePhoto(ctx); err != nil {
			exitWithError(err)
		}
	case photoFlag != "":
		if err := loadPhoto(session, photoFlag); err != nil {
			exitWithError(err)
		}
	}

	res, _ := session.Submit(ctx)
	if res.State != tryon.StateSucceeded {
		exitWithError(errors.New(res.Message()))
	}

	store, err := storage.NewFileStore(outFlag)
	if err != nil {
		exitWithError(err)
	}
	key, err := tryon.Save(ctx, store, httpClient, res.ImageURI, time.Now())
	if err != nil {
		exitWithError(fmt.Errorf("save result: %w", err))
	}
	fmt.Println(store.Path(key))
}

// loadPhoto reads local files through the upload path so they are resized;
// anything else is handed to the session as a reference.
func loadPhoto(s *tryon.Session, raw string) error {
	if info, err := os.Stat(raw); err == nil && !info.IsDir() {
		data, err := os.ReadFile(raw)
		if err != nil {
			return fmt.Errorf("read -photo: %w", err)
		}
		return s.UploadPhoto(data)
	}
	s.SetPhoto(raw)
	return nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
