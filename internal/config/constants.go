package config

import "time"

// Base application details
const AppName = "porcupine"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "porcupine.log"

// UI Layout
const StatusBarHeight = 1

// Status Bar
const MessageTimeout = 4 * time.Second

// These could be moved to NewDefaultConfig(), keeping here for now
const DefaultTabWidth = 4
const DefaultScrollOff = 3
const SystemClipboard = true
const DefaultMaxHistory = 100
