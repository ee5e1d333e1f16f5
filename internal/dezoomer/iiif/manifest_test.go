package iiif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEnglishOrFirst(t *testing.T) {
	var plain label
	require.NoError(t, plain.UnmarshalJSON([]byte(`"Hello"`)))
	got, ok := plain.englishOrFirst()
	assert.True(t, ok)
	assert.Equal(t, "Hello", got)

	var empty label
	require.NoError(t, empty.UnmarshalJSON([]byte(`""`)))
	_, ok = empty.englishOrFirst()
	assert.False(t, ok)

	var withEnglish label
	require.NoError(t, withEnglish.UnmarshalJSON([]byte(`{"en":["World"],"fr":["Monde"]}`)))
	got, ok = withEnglish.englishOrFirst()
	assert.True(t, ok)
	assert.Equal(t, "World", got)

	var emptyEnglish label
	require.NoError(t, emptyEnglish.UnmarshalJSON([]byte(`{"en":[""],"fr":["Monde"]}`)))
	got, ok = emptyEnglish.englishOrFirst()
	assert.True(t, ok)
	assert.Equal(t, "Monde", got)

	var none label
	require.NoError(t, none.UnmarshalJSON([]byte(`null`)))
	_, ok = none.englishOrFirst()
	assert.False(t, ok)
}

func TestExtractImageInfosResolvesInfoJSON(t *testing.T) {
	data := []byte(`
        {
          "@context": "http://iiif.io/api/presentation/3/context.json",
          "id": "https://example.org/iiif/book1/manifest",
          "type": "Manifest",
          "label": { "en": [ "Book 1" ] },
          "items": [
            {
              "id": "https://example.org/iiif/book1/canvas/p1",
              "type": "Canvas",
              "label": { "en": [ "Page 1" ] },
              "items": [
                {
                  "items": [
                    {
                      "type": "Annotation",
                      "motivation": "painting",
                      "body": {
                        "id": "https://example.org/iiif/book1/page1_img/full/max/0/default.jpg",
                        "type": "Image",
                        "service": [
                          { "id": "https://example.org/iiif/book1/page1_svc", "type": "ImageService2" }
                        ]
                      }
                    }
                  ]
                }
              ]
            }
          ]
        }`)
	infos, err := parseManifest(data, "https://example.org/iiif/book1/manifest")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "https://example.org/iiif/book1/page1_svc/info.json", infos[0].imageURI)
	assert.Equal(t, "Book 1", infos[0].manifestLabel)
	assert.Equal(t, "Page 1", infos[0].canvasLabel)
	assert.Equal(t, 0, infos[0].canvasIndex)
}

func TestExtractImageInfosUsesDirectImageWithoutService(t *testing.T) {
	data := []byte(`
        {
          "id": "https://example.org/manifest-no-service", "type": "Manifest",
          "items": [{ "id": "c1", "type": "Canvas", "items": [{ "items": [
            { "type": "Annotation", "motivation": "painting",
              "body": { "id": "https://example.org/images/direct_image.jpg", "type": "Image" } }
          ]}]}]
        }`)
	infos, err := parseManifest(data, "https://example.org/manifest-no-service")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "https://example.org/images/direct_image.jpg", infos[0].imageURI)
	assert.Empty(t, infos[0].manifestLabel)
	assert.Empty(t, infos[0].canvasLabel)
}

func TestExtractImageInfosPrioritizesImageService3(t *testing.T) {
	data := []byte(`
        {
          "id": "manifest-svc-priority", "type": "Manifest",
          "items": [{ "id": "c1", "type": "Canvas", "items": [{ "items": [
            { "type": "Annotation", "motivation": "painting",
              "body": { "id": "img.jpg", "type": "Image",
                "service": [
                  { "id": "https://example.org/svc2", "type": "ImageService2" },
                  { "id": "https://example.org/svc3", "type": "ImageService3" }
                ]
              }
            }
          ]}]}]
        }`)
	infos, err := parseManifest(data, "https://example.org/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "https://example.org/svc3/info.json", infos[0].imageURI)
}

func TestExtractImageInfosKeepsServiceIDAlreadyEndingInInfoJSON(t *testing.T) {
	data := []byte(`
        {
          "id": "manifest-info-json-in-id", "type": "Manifest",
          "items": [{ "id": "c1", "type": "Canvas", "items": [{ "items": [
            { "type": "Annotation", "motivation": "painting",
              "body": { "id": "irrelevant.jpg", "type": "Image",
                "service": [ { "id": "https://example.org/iiif/img_already_info/info.json", "type": "ImageService3" } ]
              }
            }
          ]}]}]
        }`)
	infos, err := parseManifest(data, "https://unused.example.com/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "https://example.org/iiif/img_already_info/info.json", infos[0].imageURI)
}

func TestExtractImageInfosHandlesLegacyAtIDAtType(t *testing.T) {
	data := []byte(`
        {
            "id": "https://bl.digirati.io/iiif/ark:/81055/man_10000006.0x000001",
            "type": "Manifest",
            "label": { "en": [ "Cotton MS Nero D IV" ] },
            "items": [ {
                "id": "...", "type": "Canvas", "label": { "en": [ "Front cover" ] },
                "items": [ {
                    "items": [ {
                        "type": "Annotation", "motivation": "painting",
                        "body": {
                            "id": ".../default.jpg", "type": "Image",
                            "service": [
                                { "@id": "https://bl.digirati.io/images/ark:/81055/81055/man_10000006.0x000002", "@type": "ImageService2" },
                                { "id": "https://dlcs.bl.digirati.io/iiif-img/v3/.../man_10000006.0x000002", "type": "ImageService3" }
                            ]
                        }
                    } ]
                } ]
            } ]
        }`)
	infos, err := parseManifest(data, "https://bl.digirati.io/iiif/ark:/81055/man_10000006.0x000001")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "https://dlcs.bl.digirati.io/iiif-img/v3/.../man_10000006.0x000002/info.json", infos[0].imageURI)
	assert.Equal(t, "Cotton MS Nero D IV", infos[0].manifestLabel)
	assert.Equal(t, "Front cover", infos[0].canvasLabel)
}

func TestExtractImageInfosSkipsEmptyOrUnsupportedBodies(t *testing.T) {
	data := []byte(`
        {
          "id": "manifest-empty-body", "type": "Manifest",
          "items": [{ "id": "c1", "type": "Canvas", "items": [{ "items": [
            { "type": "Annotation", "motivation": "painting", "body": {} },
            { "type": "Annotation", "motivation": "painting" }
          ]}]}]
        }`)
	infos, err := parseManifest(data, "https://example.org/")
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestExtractImageInfosResolvesRelativeServiceURIs(t *testing.T) {
	manifestURL := "https://library.example.edu/collection/item123/manifest.json"
	data := []byte(`
        {
          "id": "relative-manifest", "type": "Manifest", "label": {"en": ["RelPath Test"]},
          "items": [
            {
              "id": "c1", "type": "Canvas", "label": {"en": ["C1 Rel Svc"]},
              "items": [{"items": [{"type": "Annotation", "motivation": "painting",
                  "body": { "id": "../images/image1.jpg", "type": "Image", "service": [{"id": "../services/image1_svc", "type": "ImageService3"}]}
              }]}]
            },
            {
              "id": "c2", "type": "Canvas", "label": {"en": ["C2 Abs Path Svc"]},
              "items": [{"items": [{"type": "Annotation", "motivation": "painting",
                  "body": { "id": "/img/abs_image2.png", "type": "Image", "service": [{"id": "/iiif-services/abs_image2_svc", "type": "ImageService2"}]}
              }]}]
            },
            {
              "id": "c3", "type": "Canvas", "label": {"en": ["C3 Direct Rel Img"]},
              "items": [{"items": [{"type": "Annotation", "motivation": "painting",
                  "body": { "id": "images/cover_art.jpeg", "type": "Image" }
              }]}]
            }
          ]
        }`)
	infos, err := parseManifest(data, manifestURL)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "https://library.example.edu/collection/services/image1_svc/info.json", infos[0].imageURI)
	assert.Equal(t, "https://library.example.edu/iiif-services/abs_image2_svc/info.json", infos[1].imageURI)
	assert.Equal(t, "https://library.example.edu/collection/item123/images/cover_art.jpeg", infos[2].imageURI)
}

func TestDetermineTitleJoinsDistinctParts(t *testing.T) {
	info := extractedImageInfo{manifestLabel: "Book", metadataTitle: "Book", canvasLabel: "Page 1"}
	assert.Equal(t, "Book - Page 1", determineTitle(info))
}

func TestDetermineTitleEmptyWhenNothingAvailable(t *testing.T) {
	assert.Equal(t, "", determineTitle(extractedImageInfo{}))
}

func TestParseManifestRejectsInvalidJSON(t *testing.T) {
	_, err := parseManifest([]byte(`{ "id": "test", "type": "Manifest", items: [ -- broken json -- ] }`), "https://example.com/invalid.json")
	assert.Error(t, err)
}
