// Package platform hosts fixture servers.
//
// A Deployment describes the application under test: either an in-process
// http.Handler or a command to run as a child process. A Factory turns a
// Deployment into a Container, which starts and stops the server and
// reports its base URL and a base client configuration. Target is the
// base-address handle handed to test cases.
//
// Two factories are provided. InProcessFactory serves the handler from an
// httptest.Server. ProcessFactory runs the command on a loopback port,
// waits for it to answer HTTP and stops it with SIGTERM, escalating to
// SIGKILL. DefaultFactory picks one from the HTTPENV_CONTAINER_FACTORY
// environment variable.
package platform
