// Package alerts implements the rule evaluation engine and webhook delivery
// for cairnd alerting. Rules are evaluated against per-series cache
// statistics; webhooks are delivered to Slack, Teams, or generic HTTP targets.
package alerts
