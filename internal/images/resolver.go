package images

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"movelite-client/internal/apiclient"

	"github.com/rs/zerolog"
)

// Default fallbacks for activity pictures and avatars
const (
	DefaultFallbackLocal  = "fondo2.jpg"
	DefaultFallbackRemote = "imagenes/fondo2.jpg"
	DefaultAvatarRemote   = "imagenes/persona1.jpg"
)

// bundle lists the pictures shipped with the client
var bundle = map[string]Asset{}

func init() {
	for _, name := range []string{
		"android-icon-background.png",
		"android-icon-foreground.png",
		"android-icon-monochrome.png",
		"favicon.png",
		"fondo.avif",
		"fondo2.jpg",
		"fondo3.webp",
		"fondo4.webp",
		"icon.png",
		"images1.jfif",
		"kunfu.jpg",
		"logout2sin.png",
		"partial-react-logo.png",
		"persona1.jpg",
		"react-logo.png",
		"splash-icon.png",
	} {
		bundle[name] = Asset{Name: name, Path: "assets/images/" + name}
	}
}

// Asset is a picture shipped with the client
type Asset struct {
	Name string
	Path string
}

// Source is where a picture is displayed from: a bundled asset or a URL
type Source struct {
	Asset *Asset
	URI   string
}

// IsLocal reports whether the source is bundled
func (s Source) IsLocal() bool {
	return s.Asset != nil
}

// String renders the source for display
func (s Source) String() string {
	if s.Asset != nil {
		return s.Asset.Path
	}
	return s.URI
}

// Lookup returns the bundled asset called name
func Lookup(name string) (Asset, bool) {
	a, ok := bundle[name]
	return a, ok
}

var (
	imagesPrefix   = regexp.MustCompile(`(?i)^images/+`)
	imagenesPrefix = regexp.MustCompile(`(?i)^imagenes/+`)
)

// Normalize strips surrounding space, leading slashes, then an images/ folder and an imagenes/ folder
func Normalize(value string) string {
	cleaned := strings.TrimLeft(strings.TrimSpace(value), "/")
	cleaned = imagesPrefix.ReplaceAllString(cleaned, "")
	return imagenesPrefix.ReplaceAllString(cleaned, "")
}

// Resolver picks the source of activity pictures
type Resolver struct {
	baseURL        string
	debug          bool
	logger         zerolog.Logger
	fallbackLocal  string
	fallbackRemote string

	mu      sync.Mutex
	emitted map[string]struct{}
}

// NewResolver builds a resolver that turns remote paths into URLs under baseURL.
// Diagnostics are written to logger only when debug is set.
func NewResolver(baseURL string, debug bool, logger zerolog.Logger) *Resolver {
	return &Resolver{
		baseURL:        baseURL,
		debug:          debug,
		logger:         logger,
		fallbackLocal:  DefaultFallbackLocal,
		fallbackRemote: DefaultFallbackRemote,
		emitted:        make(map[string]struct{}),
	}
}

// SetActivityFallbacks replaces the fallbacks ResolveActivity uses. Blank values keep the defaults.
func (r *Resolver) SetActivityFallbacks(local, remote string) {
	if strings.TrimSpace(local) != "" {
		r.fallbackLocal = local
	}
	if strings.TrimSpace(remote) != "" {
		r.fallbackRemote = remote
	}
}

// Resolve finds the source for path: the bundled asset with that name, then the bundled
// fallbackLocal, then a URL built from fallbackRemote (or path when fallbackRemote is blank).
func (r *Resolver) Resolve(path, fallbackLocal, fallbackRemote string) (Source, bool) {
	name := Normalize(path)
	if asset, ok := Lookup(name); ok && name != "" {
		r.logOnce(zerolog.DebugLevel, "local image found", map[string]string{"path": path, "name": name})
		return Source{Asset: &asset}, true
	}

	if name != "" {
		r.logOnce(zerolog.WarnLevel, "image name not in bundle", map[string]string{
			"path":       path,
			"name":       name,
			"suggestion": "add '" + name + "' to the image bundle",
		})
		if strings.HasSuffix(strings.ToLower(name), ".jfif") {
			r.logOnce(zerolog.WarnLevel, "jfif extension detected", map[string]string{
				"path":           path,
				"recommendation": "convert the picture to .jpg or .png",
			})
		}
	}

	fallbackName := Normalize(fallbackLocal)
	if asset, ok := Lookup(fallbackName); ok && fallbackName != "" {
		r.logOnce(zerolog.DebugLevel, "using local fallback", map[string]string{"path": path, "fallback_local": fallbackName})
		return Source{Asset: &asset}, true
	}

	uri := apiclient.AbsoluteURL(r.baseURL, fallbackRemote)
	if uri == "" {
		uri = apiclient.AbsoluteURL(r.baseURL, path)
	}
	if uri == "" {
		r.logOnce(zerolog.WarnLevel, "image source unresolved", map[string]string{
			"path":            path,
			"fallback_local":  fallbackLocal,
			"fallback_remote": fallbackRemote,
		})
		return Source{}, false
	}

	r.logOnce(zerolog.DebugLevel, "using remote image", map[string]string{"path": path, "uri": uri})
	return Source{URI: uri}, true
}

// ResolveActivity applies the activity fallbacks
func (r *Resolver) ResolveActivity(photo string) (Source, bool) {
	return r.Resolve(photo, r.fallbackLocal, r.fallbackRemote)
}

func (r *Resolver) logOnce(level zerolog.Level, event string, fields map[string]string) {
	if !r.debug {
		return
	}

	payload, _ := json.Marshal(fields)
	key := level.String() + "|" + event + "|" + string(payload)

	r.mu.Lock()
	if _, seen := r.emitted[key]; seen {
		r.mu.Unlock()
		return
	}
	r.emitted[key] = struct{}{}
	r.mu.Unlock()

	e := r.logger.WithLevel(level)
	for k, v := range fields {
		e = e.Str(k, v)
	}
	e.Msg(event)
}
