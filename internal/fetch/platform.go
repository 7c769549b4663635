package fetch

import (
	"net/url"
	"strings"
)

// Platform is a hosted applicant-tracking system whose careers pages share markup.
type Platform string

// Known platforms.
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformMarkup struct {
	hosts   []string
	content []string
	noise   []string
}

var platforms = map[Platform]platformMarkup{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{"#main", ".job-posts", ".job__description", "#content"},
		noise:   []string{".application--wrapper", "#application", ".voluntary-self-id", "#usa_self_id_section"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".postings-wrapper", ".posting-page", ".section-wrapper.page-full-width", ".content"},
		noise:   []string{".application-form", ".posting-apply", ".apply-section"},
	},
	PlatformWorkday: {
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobResults']", "[data-automation-id='jobDescription']", "main"},
		noise:   []string{"[data-automation-id='applyButton']", "[data-automation-id='footer']"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"._jobPostings", "._content", "main"},
		noise:   []string{"._applicationForm"},
	},
}

// commonNoise is removed on every page: application forms, legal notices and consent banners.
var commonNoise = []string{
	"form",
	".eeo-statement",
	".legal-disclosure",
	".social-share",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the hosting platform from a careers page URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for platform, markup := range platforms {
		for _, suffix := range markup.hosts {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// ContentSelectors returns the content selectors to try for platform, most specific first.
func ContentSelectors(platform Platform) []string {
	markup, ok := platforms[platform]
	if !ok {
		return CareersPageSelectors()
	}
	return append(append([]string(nil), markup.content...), CareersPageSelectors()...)
}

// NoiseSelectors returns the selectors removed before text extraction on platform.
func NoiseSelectors(platform Platform) []string {
	noise := append([]string(nil), commonNoise...)
	return append(noise, platforms[platform].noise...)
}
