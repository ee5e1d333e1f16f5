package iiif

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/network"
)

// label is a IIIF Presentation API label: either a plain string (API 1/2
// style) or a language-tagged map of strings to value lists (API 3
// style), or absent entirely.
type label struct {
	plain string
	byLang map[string][]string
	isSet  bool
}

func (l *label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.plain = s
		l.isSet = true
		return nil
	}
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err == nil {
		l.byLang = m
		l.isSet = true
		return nil
	}
	// null or some other unsupported shape: treat as absent.
	return nil
}

// englishOrFirst returns the English label if present, else the first
// non-empty label for any language, else the plain string if set.
func (l label) englishOrFirst() (string, bool) {
	if l.byLang != nil {
		if en, ok := l.byLang["en"]; ok {
			for _, s := range en {
				if s != "" {
					return s, true
				}
			}
		}
		for _, vals := range l.byLang {
			for _, s := range vals {
				if s != "" {
					return s, true
				}
			}
		}
		return "", false
	}
	if l.isSet && l.plain != "" {
		return l.plain, true
	}
	return "", false
}

type metadataEntry struct {
	Label label `json:"label"`
	Value label `json:"value"`
}

func (m metadataEntry) title() (string, bool) {
	lbl, ok := m.Label.englishOrFirst()
	if !ok || !strings.EqualFold(lbl, "title") {
		return "", false
	}
	return m.Value.englishOrFirst()
}

type manifest struct {
	ID           string          `json:"id"`
	ManifestType string          `json:"type"`
	Label        label           `json:"label"`
	Items        []canvas        `json:"items"`
	Metadata     []metadataEntry `json:"metadata"`
}

type canvas struct {
	ID    string           `json:"id"`
	Label label            `json:"label"`
	Items []annotationPage `json:"items"`
}

type annotationPage struct {
	Items []annotation `json:"items"`
}

type annotation struct {
	Motivation string          `json:"motivation"`
	Body       json.RawMessage `json:"body"`
}

type imageBody struct {
	ID        string         `json:"id"`
	ImageType string         `json:"type"`
	Service   []imageService `json:"service"`
}

type imageService struct {
	ID          string `json:"id"`
	AltID       string `json:"@id"`
	ServiceType string `json:"type"`
	AltType     string `json:"@type"`
}

func (s imageService) resolvedID() string {
	if s.ID != "" {
		return s.ID
	}
	return s.AltID
}

func (s imageService) resolvedType() string {
	if s.ServiceType != "" {
		return s.ServiceType
	}
	return s.AltType
}

// extractedImageInfo is one image worth dezoomifying, carried through
// from a single annotation within a manifest.
type extractedImageInfo struct {
	imageURI      string
	manifestLabel string
	metadataTitle string
	canvasLabel   string
	canvasIndex   int
}

func (m manifest) metadataTitle() (string, bool) {
	for _, e := range m.Metadata {
		if t, ok := e.title(); ok {
			return t, true
		}
	}
	return "", false
}

// extractImageInfos walks every canvas/annotation-page/annotation in
// the manifest, keeping "painting" annotations whose body is an image,
// and resolves each one's info.json (preferring ImageService3, then
// ImageService2, then any other service) or its direct image link
// relative to manifestURL.
func (m manifest) extractImageInfos(manifestURL string) []extractedImageInfo {
	var infos []extractedImageInfo
	manifestLabel, _ := m.Label.englishOrFirst()
	metadataTitle, _ := m.metadataTitle()

	for canvasIndex, c := range m.Items {
		canvasLabel, _ := c.Label.englishOrFirst()
		for _, page := range c.Items {
			for _, a := range page.Items {
				if a.Motivation != "painting" {
					continue
				}
				var body imageBody
				if err := json.Unmarshal(a.Body, &body); err != nil {
					continue
				}
				if body.ID == "" && len(body.Service) == 0 {
					continue
				}

				uri, ok := resolveImageURI(manifestURL, body)
				if !ok {
					continue
				}
				infos = append(infos, extractedImageInfo{
					imageURI:      uri,
					manifestLabel: manifestLabel,
					metadataTitle: metadataTitle,
					canvasLabel:   canvasLabel,
					canvasIndex:   canvasIndex,
				})
			}
		}
	}
	return infos
}

func resolveImageURI(manifestURL string, body imageBody) (string, bool) {
	var chosenServiceID string
	for _, s := range body.Service {
		if s.resolvedType() == "ImageService3" && s.resolvedID() != "" {
			chosenServiceID = s.resolvedID()
			break
		}
	}
	if chosenServiceID == "" {
		for _, s := range body.Service {
			if s.resolvedType() == "ImageService2" && s.resolvedID() != "" {
				chosenServiceID = s.resolvedID()
				break
			}
		}
	}
	if chosenServiceID == "" {
		for _, s := range body.Service {
			if s.resolvedID() != "" {
				chosenServiceID = s.resolvedID()
				break
			}
		}
	}

	if chosenServiceID != "" {
		resolved, err := network.ResolveRelative(manifestURL, chosenServiceID)
		if err != nil {
			return "", false
		}
		if !strings.HasSuffix(resolved, "/info.json") {
			if !strings.HasSuffix(resolved, "/") {
				resolved += "/"
			}
			resolved += "info.json"
		}
		return resolved, true
	}

	if body.ID != "" && (body.ImageType == "" || body.ImageType == "Image") {
		resolved, err := network.ResolveRelative(manifestURL, body.ID)
		if err != nil {
			return "", false
		}
		return resolved, true
	}
	return "", false
}

// determineTitle joins whatever of manifest label, metadata title, and
// canvas label are present and distinct, in that order, with " - ".
func determineTitle(info extractedImageInfo) string {
	var parts []string
	seen := map[string]bool{}
	add := func(s string) {
		if s != "" && !seen[s] {
			parts = append(parts, s)
			seen[s] = true
		}
	}
	add(info.manifestLabel)
	add(info.metadataTitle)
	add(info.canvasLabel)
	return strings.Join(parts, " - ")
}

// parseManifest parses a IIIF Presentation API Manifest and extracts
// every image it names, erroring only on malformed JSON.
func parseManifest(body []byte, manifestURL string) ([]extractedImageInfo, error) {
	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parse IIIF manifest: %w", err)
	}
	return m.extractImageInfos(manifestURL), nil
}
