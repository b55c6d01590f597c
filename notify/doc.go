// Package notify fans finished run reports out to the channels the team
// watches: Slack webhooks, email via SendGrid, Telegram, and a NATS subject
// for downstream automation.
//
// Delivery is best-effort. A failed sink never fails the run that produced
// the report; outcomes are recorded per sink so callers can surface them.
package notify
