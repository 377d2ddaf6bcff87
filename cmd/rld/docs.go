package main

// General API documentation for swaggo. Run `swag init -g cmd/rld/docs.go -o docs` to regenerate.
//
// @title           rld API
// @version         1.0
// @description     Observation packing, unpacking and forward passes for wrapped policy models.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
