package nests

import (
	"strings"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// Confidence tiers for the classification sources. Auto-applied rules
// are scaled into [0.7, 0.95] so downstream consumers can still tell
// "ruled" apart from "hand-confirmed".
const (
	confDomainPattern = 0.75
	confTitleKeyword  = 0.65
	confWeakRule      = 0.6
)

// domainPatterns are substring matches against a tab's domain.
var domainPatterns = map[types.CategoryID][]string{
	types.CatSchool: {
		"edu", "canvas", "blackboard", "moodle", "coursera", "edx", "khan",
		"university", "college", "school", "academic", "scholar", "researchgate",
	},
	types.CatWork: {
		"slack", "teams", "jira", "confluence", "asana", "trello", "notion",
		"github", "gitlab", "bitbucket", "linkedin", "indeed", "glassdoor",
		"office", "outlook", "gmail", "calendar", "drive.google",
	},
	types.CatPersonal: {
		"facebook", "instagram", "twitter", "reddit", "discord", "whatsapp",
		"messenger", "youtube", "netflix", "spotify", "pinterest",
	},
	types.CatCreative: {
		"behance", "dribbble", "figma", "adobe", "canva", "pinterest",
		"artstation", "deviantart", "unsplash", "pexels", "flickr",
	},
	types.CatShopping: {
		"amazon", "ebay", "etsy", "shopify", "paypal", "stripe", "venmo",
		"bank", "credit", "cart", "checkout", "store", "shop",
	},
	types.CatResearch: {
		"wikipedia", "arxiv", "pubmed", "scholar.google", "researchgate",
		"jstor", "ieee", "acm", "nature", "science",
	},
}

// titleKeywords are substring matches against a tab's lowercased title.
var titleKeywords = map[types.CategoryID][]string{
	types.CatSchool:   {"homework", "assignment", "exam", "quiz", "lecture", "course", "study", "notes"},
	types.CatWork:     {"meeting", "project", "task", "deadline", "report", "presentation", "client"},
	types.CatPersonal: {"recipe", "travel", "weather", "news", "blog", "diary", "journal"},
	types.CatCreative: {"design", "art", "illustration", "photo", "video", "music", "drawing"},
	types.CatShopping: {"buy", "price", "deal", "sale", "cart", "checkout", "payment", "order"},
	types.CatResearch: {"research", "study", "paper", "article", "journal", "analysis", "data"},
}

// TitleKeywordsFor exposes the title keyword table for a category, for
// callers that score keywords over larger text bodies.
func TitleKeywordsFor(id types.CategoryID) []string {
	return titleKeywords[id]
}

// Detection is a classification result.
type Detection struct {
	CategoryID types.CategoryID
	Confidence float64
}

// RuleMatches reports whether a rule applies to a domain. Containment
// runs in both directions so subdomains match parent rules and vice
// versa.
func RuleMatches(rule types.DomainRule, domain string) bool {
	return strings.Contains(domain, rule.Domain) || rule.Domain == domain
}

// FindRule returns the first rule matching the domain, or nil.
func FindRule(rules []types.DomainRule, domain string) *types.DomainRule {
	for i := range rules {
		if RuleMatches(rules[i], domain) {
			return &rules[i]
		}
	}
	return nil
}

// Classify determines the most likely category for a tab.
//
// An auto-apply domain rule wins outright. Otherwise domain patterns
// (0.75) and title keywords (0.65) compete, with a non-auto rule
// contributing a weak 0.6 candidate; the highest confidence wins and
// ties keep the first candidate in category enumeration order. Tabs
// matching nothing come back as (unsorted, 0).
func Classify(tab *types.Tab, rules []types.DomainRule) Detection {
	rule := FindRule(rules, tab.Domain)
	if rule != nil && rule.AutoApply {
		conf := 0.7 + rule.Confidence*0.25
		if conf > 0.95 {
			conf = 0.95
		}
		return Detection{CategoryID: rule.CategoryID, Confidence: conf}
	}

	domainLower := strings.ToLower(tab.Domain)
	titleLower := strings.ToLower(tab.Title)

	var best *Detection
	consider := func(id types.CategoryID, conf float64) {
		if best == nil || conf > best.Confidence {
			best = &Detection{CategoryID: id, Confidence: conf}
		}
	}

	for _, id := range types.CategoryOrder {
		if id == types.CatRandom || id == types.CatUnsorted {
			continue
		}
		for _, pattern := range domainPatterns[id] {
			if strings.Contains(domainLower, pattern) {
				consider(id, confDomainPattern)
				break
			}
		}
		for _, keyword := range titleKeywords[id] {
			if strings.Contains(titleLower, keyword) {
				consider(id, confTitleKeyword)
				break
			}
		}
	}

	if rule != nil && !rule.AutoApply {
		consider(rule.CategoryID, confWeakRule)
	}

	if best == nil {
		return Detection{CategoryID: types.CatUnsorted, Confidence: 0}
	}
	return *best
}
