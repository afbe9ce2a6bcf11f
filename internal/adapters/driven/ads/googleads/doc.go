// Package googleads fetches keyword ideas from the Google Ads keyword planner.
//
// The adapter calls the REST form of KeywordPlanIdeaService.GenerateKeywordIdeas
// with an OAuth2 refresh token. Calls are throttled with a token bucket and
// backed off after a 429. Incomplete credentials are reported per call as a
// domain.ConfigurationError so the idea chain can move on to the next source.
package googleads
