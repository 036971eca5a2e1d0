// Package stack renders per-session compose documents for the
// development service stack.
//
// The stack is a fixed table of cooperating infrastructure services: a
// graph store (neo4j), a message bus (nats), a storage emulator
// (azurite) and placeholder APIs. Requested services outside the table
// fall back to a placeholder image so ad-hoc service sets still start.
//
// Host ports never appear literally in the rendered document; every
// published port references the session's env file through a
// ${<SERVICE>_PORT} variable. Profiles gate the service set: "core"
// runs the infrastructure trio, "full" adds the placeholder API.
package stack
