// Package schedule converts between the console's structured schedule picker
// (daily / weekly / hourly) and the restricted cron strings stored on rules.
//
// Encode, Decode and Humanize are total: Decode falls back to Default and
// Humanize passes unrecognized strings through, so every stored rule has a
// renderable schedule. Next and Validate use the full crontab grammar and are
// the only functions that return errors.
package schedule
