// Package config loads and watches the agent configuration file (config.yaml).
//
// Top-level types:
//   - Config{Agent} — full config tree parsed from YAML
//   - AgentConfig — poll_interval, elasticsearch, emitter, export,
//     extra_metrics []
//   - ElasticsearchConfig — url, timeout, auth, tls
//   - AuthConfig — mode (apikey|bearer|basic|none); Key(), Token() and
//     Password() resolve secret material from environment variables
//   - EmitterConfig — endpoint, buffer_size, batch_size, auth
//   - ExportConfig — enabled, listen, ttl for the Prometheus exposition side
//   - ExtraMetric — name, units, scope (cluster|node), kind (gauge|counter),
//     gjson path into the raw stats body
//
// Load(path) reads the YAML file, applies defaults (60s poll, 10s fetch
// timeout, 1000 buffer, 50 batch, :9464 export), then validates required
// fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors (vim, VS Code) by re-adding the watch after
// a rename event.
package config
