package config

import (
	"fmt"
	"os"
	"path/filepath"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

const defaultConfig = `site:
  title: My Site
  description: ""
  base_url: ""

source:
  content: content
  layouts: layouts
  static: static

output:
  directory: public
  clean: true

build:
  category_indexes: true
  git_lastmod: true

serve:
  addr: ":8080"
  metrics: true
`

const defaultLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}{{ if .Site.Title }} | {{ .Site.Title }}{{ end }}</title>
</head>
<body>
{{ .Content }}
</body>
</html>
`

const postLayout = `---
layout: default
---
<article>
<h1>{{ .Title }}</h1>
{{ .Content }}
</article>
`

const welcomePost = `---
layout: post
title: Welcome
categories: blog
---
First post. Edit or delete me.
`

// Init scaffolds a configuration file and the conventional source directories.
// Existing files are preserved unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return sgerrors.Config(fmt.Sprintf("%s already exists (use --force to overwrite)", configPath), nil)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return sgerrors.FileSystem(configPath, "write config file", err)
	}

	scaffold := map[string]string{
		filepath.Join("layouts", "default.html"): defaultLayout,
		filepath.Join("layouts", "post.html"):    postLayout,
		filepath.Join("content", "welcome.md"):   welcomePost,
		filepath.Join("static", ".gitkeep"):      "",
	}
	for path, body := range scaffold {
		if _, err := os.Stat(path); err == nil && !force {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return sgerrors.FileSystem(path, "create scaffold directory", err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return sgerrors.FileSystem(path, "write scaffold file", err)
		}
	}
	return nil
}
