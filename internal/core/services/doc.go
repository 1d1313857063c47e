// Package services implements the driving port interfaces.
// Services contain the core lookup logic and orchestrate
// calls to driven ports (directories and the config store).
package services
