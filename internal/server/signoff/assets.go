package signoff

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/auth"
)

const (
	uploadRawPrefix = "/api/upload-raw/"
	tokenizedPrefix = "/api/sign_off_requests/upload-raw/"
)

// rawUploadHref matches internal raw-upload references inside rendered
// body HTML attribute values.
var rawUploadHref = regexp.MustCompile(`/api/upload-raw/(.*?)"`)

// TokenizeAssetURLs rewrites every internal raw-upload URL on the item
// into a token-gated one, minting one short-lived upload-raw token per
// referenced asset, bound to both the asset filename and the requesting
// author. Hrefs already pointing at external object storage are left
// unmodified. Callers pass a per-request clone; the stored item is never
// rewritten.
func (s *Service) TokenizeAssetURLs(item *archive.Item, authorID uuid.UUID) error {
	body := item.BodyHTML
	for _, match := range rawUploadHref.FindAllStringSubmatch(item.BodyHTML, -1) {
		filename := match[1]
		token, err := s.issuer.Mint(filename, authorID, auth.ScopeUploadRaw, s.cfg.AssetTokenExpiration)
		if err != nil {
			return err
		}
		body = strings.ReplaceAll(body, uploadRawPrefix+filename, tokenizedPrefix+token)
	}
	item.BodyHTML = body

	for _, association := range item.Associations {
		if association == nil {
			continue
		}
		for _, rendition := range association.Renditions {
			if rendition == nil {
				continue
			}
			href := rendition.Href
			if strings.Contains(href, s.cfg.ExternalStorageMarker) {
				continue
			}
			idx := strings.Index(href, uploadRawPrefix)
			if idx < 0 {
				continue
			}

			filename := href[idx+len(uploadRawPrefix):]
			token, err := s.issuer.Mint(filename, authorID, auth.ScopeUploadRaw, s.cfg.AssetTokenExpiration)
			if err != nil {
				return err
			}
			rendition.Href = strings.Replace(href, uploadRawPrefix+filename, tokenizedPrefix+token, 1)
		}
	}

	return nil
}
