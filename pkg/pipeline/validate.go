package pipeline

import (
	"net/url"
	"strings"

	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
)

const (
	// quotaOutputSize is the target size of a validated result list before
	// the whole-photo prepend.
	quotaOutputSize = 3
	// finalResultCap bounds the list after the whole-photo prepend.
	finalResultCap = 5
	// wholePhotoPrependLimit caps how many whole-photo hits may be prepended.
	wholePhotoPrependLimit = 5
	// rawFallbackSize is how many raw hits the no-LLM fallback keeps.
	rawFallbackSize = 3
)

// defaultDomesticDomains are ko-KR retailer domains counted toward the
// domestic quota. Locale data, not logic; another region swaps the list.
var defaultDomesticDomains = []string{
	"musinsa.com",
	"29cm.co.kr",
	"wconcept.co.kr",
	"zigzag.kr",
	"a-bly.com",
	"kream.co.kr",
	"coupang.com",
	"gmarket.co.kr",
	"11st.co.kr",
	"ssg.com",
	"ssfshop.com",
	"brandi.co.kr",
	"smartstore.naver.com",
	"brand.naver.com",
	"shopping.naver.com",
	"oliveyoung.co.kr",
}

// defaultBlockedDomains never produce purchasable product pages.
var defaultBlockedDomains = []string{
	"instagram.com",
	"facebook.com",
	"pinterest.com",
	"pinterest.co.kr",
	"tiktok.com",
	"twitter.com",
	"x.com",
	"youtube.com",
	"google.com",
	"bing.com",
	"yandex.com",
	"blog.naver.com",
	"post.naver.com",
	"cafe.naver.com",
	"tistory.com",
	"brunch.co.kr",
	"medium.com",
	"reddit.com",
	"namu.wiki",
	"wikipedia.org",
	"vogue.com",
	"vogue.co.kr",
	"elle.com",
	"elle.co.kr",
	"harpersbazaar.com",
	"cosmopolitan.com",
	"gq.com",
	"gqkorea.co.kr",
}

// nonProductPathMarkers flag URLs that are not a single product page.
var nonProductPathMarkers = []string{
	"/reviews",
	"/review/",
	"/qa",
	"/qna",
	"/question",
	"/board/",
	"/community",
	"/magazine",
	"/event/",
	"/login",
	"/cart",
	"/wish",
}

// Validator re-checks every link the model selected. The same instance (and
// the same rules table) backs both the pre-rank filter and this pass, so the
// two can never drift apart.
type Validator struct {
	DomesticDomains []string
	BlockedDomains  []string
	logger          logger.ILogger
}

func NewValidator(log logger.ILogger) *Validator {
	return &Validator{
		DomesticDomains: defaultDomesticDomains,
		BlockedDomains:  defaultBlockedDomains,
		logger:          log,
	}
}

// hostOf extracts the lowercased host, tolerating bare host strings.
func hostOf(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(link)
	}
	return strings.ToLower(parsed.Host)
}

// domainMatches is boundary-aware: the host equals the domain or ends with
// "."+domain. Plain substring matching would false-positive on short domains
// (e.g. "x.com" inside "flex.com").
func domainMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// IsBlockedDomain reports whether the link's host is on the blocklist.
func (v *Validator) IsBlockedDomain(link string) bool {
	host := hostOf(link)
	for _, domain := range v.BlockedDomains {
		if domainMatches(host, domain) {
			return true
		}
	}
	return false
}

// IsDomesticDomain reports whether the link's host is a domestic retailer.
func (v *Validator) IsDomesticDomain(link string) bool {
	host := hostOf(link)
	for _, domain := range v.DomesticDomains {
		if domainMatches(host, domain) {
			return true
		}
	}
	return false
}

// IsNonProductURL flags reviews/Q&A/search/listing URLs. A category path is
// tolerated only when the URL also carries a product segment.
func (v *Validator) IsNonProductURL(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return true
	}
	path := strings.ToLower(parsed.Path)
	query := strings.ToLower(parsed.RawQuery)

	if strings.Contains(path, "/search") || strings.HasPrefix(query, "q=") || strings.Contains(query, "&q=") {
		return true
	}
	if strings.Contains(path, "/category/") && !strings.Contains(path, "/product") {
		return true
	}
	for _, marker := range nonProductPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// linkPasses runs the domain and URL-pattern checks shared by every path.
func (v *Validator) linkPasses(link string) bool {
	return !v.IsBlockedDomain(link) && !v.IsNonProductURL(link)
}

// FilterSelected re-validates the model's picks: blocked domains, non-product
// URLs, and the category-mismatch title check (defense in depth against a
// ranking pass that ignored its instructions). Order is preserved.
func (v *Validator) FilterSelected(item *ItemContext, links []string) []string {
	kept := make([]string, 0, len(links))
	for _, link := range links {
		if !v.linkPasses(link) {
			v.logger.Debug("validate", "link rejected by domain/url rules", map[string]interface{}{
				"item_key": item.Candidate.ItemKey,
				"link":     link,
			})
			continue
		}
		if hit, ok := item.LookupHit(link); ok {
			if TitleMismatch(item.Candidate.MappedCategory, item.Subtype, hit.Title) {
				v.logger.Debug("validate", "link rejected by category title check", map[string]interface{}{
					"item_key": item.Candidate.ItemKey,
					"link":     link,
				})
				continue
			}
		}
		kept = append(kept, link)
	}
	return kept
}

// ApplyQuota deterministically enforces the minimum-domestic-site rule.
// Order within each class follows the input order:
//
//	>=3 domestic -> 3 domestic
//	 =2 domestic -> 2 domestic + 1 international
//	 =1 domestic -> 1 domestic + up to 2 international (degraded)
//	 =0 domestic -> up to 3 international (unusual, permissive by design)
func (v *Validator) ApplyQuota(itemKey string, links []string) []string {
	var domestic, international []string
	for _, link := range links {
		if v.IsDomesticDomain(link) {
			domestic = append(domestic, link)
		} else {
			international = append(international, link)
		}
	}

	out := make([]string, 0, quotaOutputSize)
	switch {
	case len(domestic) >= 3:
		out = append(out, domestic[:3]...)
	case len(domestic) == 2:
		out = append(out, domestic...)
		if len(international) > 0 {
			out = append(out, international[0])
		}
	case len(domestic) == 1:
		out = append(out, domestic[0])
		out = append(out, takeUpTo(international, 2)...)
		v.logger.Warn("validate", "quota degraded: single domestic result", map[string]interface{}{
			"item_key":      itemKey,
			"domestic":      1,
			"international": len(international),
		})
	default:
		out = append(out, takeUpTo(international, 3)...)
		v.logger.Warn("validate", "quota unusual: zero domestic results", map[string]interface{}{
			"item_key":      itemKey,
			"international": len(international),
		})
	}
	return out
}

// PrependWholePhotoHits puts up to five independently-valid whole-photo hits
// ahead of the kept links for non-character items, deduplicated, capped.
func (v *Validator) PrependWholePhotoHits(item *ItemContext, kept []string) []string {
	if isCharacterItem(item.Candidate.Description) {
		return kept
	}

	seen := make(map[string]bool, len(kept))
	for _, link := range kept {
		seen[link] = true
	}

	var prepend []string
	for _, hit := range item.WholeMatch {
		if len(prepend) >= wholePhotoPrependLimit {
			break
		}
		if seen[hit.Link] || !v.linkPasses(hit.Link) {
			continue
		}
		if TitleMismatch(item.Candidate.MappedCategory, item.Subtype, hit.Title) {
			continue
		}
		seen[hit.Link] = true
		prepend = append(prepend, hit.Link)
	}

	out := append(prepend, kept...)
	if len(out) > finalResultCap {
		out = out[:finalResultCap]
	}
	return out
}

// RawFallback keeps the best raw hits passing only the domain/URL checks.
// Used when the ranking path yields nothing; no LLM involved.
func (v *Validator) RawFallback(item *ItemContext) []string {
	var out []string
	for _, pool := range [][]model.RetrievalHit{item.CroppedPool, item.WholeMatch} {
		for _, hit := range pool {
			if len(out) >= rawFallbackSize {
				return out
			}
			if !v.linkPasses(hit.Link) {
				continue
			}
			if containsLink(out, hit.Link) {
				continue
			}
			out = append(out, hit.Link)
		}
	}
	return out
}

// AttachMetadata resolves thumbnails/titles for the kept links.
func AttachMetadata(item *ItemContext, links []string) []model.RankedProduct {
	products := make([]model.RankedProduct, 0, len(links))
	for _, link := range links {
		product := model.RankedProduct{Link: link}
		if hit, ok := item.LookupHit(link); ok {
			product.Thumbnail = hit.Thumbnail
			product.Title = hit.Title
		}
		products = append(products, product)
	}
	return products
}

// characterMarkers mark graphic/character goods; for those, whole-photo hits
// are too noisy to prepend.
var characterMarkers = []string{
	"character", "graphic", "print", "cartoon", "캐릭터", "프린트", "그래픽",
}

func isCharacterItem(description string) bool {
	if description == "" {
		return false
	}
	lowered := strings.ToLower(description)
	for _, marker := range characterMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func takeUpTo(links []string, n int) []string {
	if len(links) <= n {
		return links
	}
	return links[:n]
}

func containsLink(links []string, link string) bool {
	for _, l := range links {
		if l == link {
			return true
		}
	}
	return false
}
