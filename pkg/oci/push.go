// Copyright (c) 2025, ChaosExp Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	apperrors "github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
)

// ArtifactType is the media type for chaosexp report artifacts.
const ArtifactType = "application/vnd.chaosexp.report"

// PushOptions configures a report push.
type PushOptions struct {
	// SourceDir is the directory holding the run artifacts.
	SourceDir string
	// Files are the artifact names within SourceDir to include, e.g.
	// ["run-abc12345.json", "run-abc12345.md", "run-abc12345.html"].
	Files []string
	// Reference is the parsed registry destination; Tag must be set.
	Reference *Reference
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// Annotations are added to the manifest, on top of the run metadata
	// the pusher sets itself.
	Annotations map[string]string
}

// PushResult describes a successfully pushed artifact.
type PushResult struct {
	// Digest is the SHA256 digest of the manifest.
	Digest string
	// Reference is the full image reference (registry/repository:tag).
	Reference string
}

// Push uploads one run's report artifacts to an OCI registry. Each file
// becomes its own layer with a media type derived from its extension, so
// registries and viewers can serve the HTML or Markdown directly.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Reference == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "registry reference is required")
	}
	if opts.Reference.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push a report")
	}
	if len(opts.Files) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "no artifacts to push")
	}

	absDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "resolving artifact directory", err)
	}

	fs, err := file.New(absDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "creating file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layers := make([]ociv1.Descriptor, 0, len(opts.Files))
	for _, name := range opts.Files {
		desc, addErr := fs.Add(ctx, name, layerMediaType(name), filepath.Join(absDir, name))
		if addErr != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeInternal,
				"adding artifact to store", addErr, map[string]any{"file": name})
		}
		layers = append(layers, desc)
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers:              layers,
			ManifestAnnotations: opts.Annotations,
		})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "packing manifest", err)
	}

	if err := fs.Tag(ctx, manifestDesc, opts.Reference.Tag); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "tagging manifest", err)
	}

	registryHost := stripProtocol(opts.Reference.Registry)
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", registryHost, opts.Reference.Repository))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "initializing remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = newAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	slog.Info("pushing report artifact",
		"registry", registryHost,
		"repository", opts.Reference.Repository,
		"tag", opts.Reference.Tag,
		"layers", len(layers))

	desc, err := oras.Copy(ctx, fs, opts.Reference.Tag, repo, opts.Reference.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnavailable, "pushing artifact to registry", err)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: fmt.Sprintf("%s/%s:%s", registryHost, opts.Reference.Repository, opts.Reference.Tag),
	}, nil
}

func layerMediaType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown"
	case ".html":
		return "text/html"
	default:
		return ociv1.MediaTypeImageLayerGzip
	}
}

// stripProtocol removes http:// or https:// prefixes so the host parses
// as a docker reference domain.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}

// newAuthClient builds an HTTP client with Docker credential support.
func newAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	return &auth.Client{
		Client:     &http.Client{Transport: transport},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}
}
