// Package config loads and validates worker configuration.
//
// Configuration is layered: repository defaults, then an optional TOML file
// (fitforge.toml in the working directory or ~/.config/fitforge/config.toml),
// then environment variables. The environment layer carries the operational
// variables the worker has always been deployed with (UPLOADS_BUCKET,
// GUIDANCE_BUCKET, SMPL_ASSETS_BUCKET, EVENT_BUS_NAME, NATS_URL,
// MAX_PROCESSING_TIME_SECONDS, MAX_IMAGE_SIZE_MB, BATCH_SIZE, and the model
// artifact paths), so container deployments need no config file at all.
//
// All path fields are tilde-expanded and normalized before validation.
package config
