package ui

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/newsletter/pkg/model"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"timeAgo": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	},
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"excerpt": func(n model.News, max int) string {
		return n.Excerpt(max)
	},
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(s, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
}

// renderTemplate renders a template with the given data.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if _, err = tmpl.New("content").Parse(content); err != nil {
		return fmt.Errorf("parse content: %w", err)
	}

	// Add shared components.
	for compName, compContent := range templates {
		if strings.HasPrefix(compName, "components/") {
			if _, err = tmpl.New(filepath.Base(compName)).Parse(compContent); err != nil {
				return fmt.Errorf("parse component %s: %w", compName, err)
			}
		}
	}

	return tmpl.Execute(w, data)
}

// templates holds all template content.
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="robots" content="noindex, nofollow">
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gradient-to-br from-blue-50 to-indigo-50 min-h-screen">
    {{if .User}}
    <nav class="bg-white/80 shadow-sm border-b">
        <div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
            <div class="flex justify-between h-16">
                <div class="flex">
                    <a href="/dashboard" class="flex items-center px-2 py-2 text-xl font-bold text-indigo-600">Newsletter</a>
                    <div class="hidden sm:ml-6 sm:flex sm:space-x-8">
                        <a href="/dashboard" class="text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 text-sm font-medium">News</a>
                        <a href="/profile" class="text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 text-sm font-medium">Profile</a>
                    </div>
                </div>
                <div class="flex items-center">
                    <span class="text-sm text-gray-500 mr-4">{{.User.DisplayName}}</span>
                    <form method="post" action="/logout" class="inline">
                        <button type="submit" class="text-sm text-gray-500 hover:text-gray-700">Sign out</button>
                    </form>
                </div>
            </div>
        </div>
    </nav>
    {{end}}

    <main class="max-w-7xl mx-auto py-6 sm:px-6 lg:px-8">
        {{template "alerts" .}}
        {{template "content" .}}
    </main>
</body>
</html>`,

	"components/alerts": `{{define "alerts"}}
{{if .Notice}}
<div class="rounded-md bg-green-50 p-4 mb-4"><div class="text-sm text-green-700">{{.Notice}}</div></div>
{{end}}
{{if .Error}}
<div class="rounded-md bg-red-50 p-4 mb-4"><div class="text-sm text-red-700">{{.Error}}</div></div>
{{end}}
{{end}}`,

	"sign-in": `{{define "content"}}
<div class="flex items-center justify-center py-12 px-4">
    <div class="max-w-md w-full bg-white/80 rounded-xl shadow-lg p-8 space-y-6">
        <div class="text-center">
            <h1 class="text-3xl font-bold text-indigo-600">Read the news</h1>
            <p class="mt-2 text-sm text-gray-600">Follow your newsletters in one place.</p>
        </div>
        <form class="space-y-4" action="/sign-in" method="POST">
            <div>
                <label for="email" class="block text-sm font-medium text-gray-700">Email</label>
                <input id="email" name="email" type="email" value="{{.Email}}" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                {{with fieldError .Errors "email"}}<p class="mt-1 text-sm text-red-600">Email {{.}}</p>{{end}}
            </div>
            <div>
                <label for="password" class="block text-sm font-medium text-gray-700">Password</label>
                <input id="password" name="password" type="password" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                {{with fieldError .Errors "password"}}<p class="mt-1 text-sm text-red-600">Password {{.}}</p>{{end}}
            </div>
            <button type="submit" class="w-full py-2 px-4 rounded-md text-white bg-indigo-600 hover:bg-indigo-700 text-sm font-medium">
                Sign in
            </button>
        </form>
        <p class="text-center text-sm text-gray-600">
            No account yet? <a href="/sign-up" class="text-indigo-600 underline">Create one</a>
        </p>
    </div>
</div>
{{end}}`,

	"sign-up": `{{define "content"}}
<div class="flex items-center justify-center py-12 px-4">
    <div class="max-w-md w-full bg-white/80 rounded-xl shadow-lg p-8 space-y-6">
        <div class="text-center">
            <h1 class="text-3xl font-bold text-indigo-600">Create your account</h1>
        </div>
        <form class="space-y-4" action="/sign-up" method="POST">
            <div>
                <label for="name" class="block text-sm font-medium text-gray-700">Name</label>
                <input id="name" name="name" type="text" value="{{.Name}}" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                {{with fieldError .Errors "name"}}<p class="mt-1 text-sm text-red-600">Name {{.}}</p>{{end}}
            </div>
            <div>
                <label for="email" class="block text-sm font-medium text-gray-700">Email</label>
                <input id="email" name="email" type="email" value="{{.Email}}" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                {{with fieldError .Errors "email"}}<p class="mt-1 text-sm text-red-600">Email {{.}}</p>{{end}}
            </div>
            <div>
                <label for="password" class="block text-sm font-medium text-gray-700">Password</label>
                <input id="password" name="password" type="password" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                {{with fieldError .Errors "password"}}<p class="mt-1 text-sm text-red-600">Password {{.}}</p>{{end}}
            </div>
            <div>
                <label for="confirmPassword" class="block text-sm font-medium text-gray-700">Confirm password</label>
                <input id="confirmPassword" name="confirmPassword" type="password" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                {{with fieldError .Errors "confirmPassword"}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
            </div>
            <button type="submit" class="w-full py-2 px-4 rounded-md text-white bg-indigo-600 hover:bg-indigo-700 text-sm font-medium">
                Create account
            </button>
        </form>
        <p class="text-center text-sm text-gray-600">
            Already registered? <a href="/sign-in" class="text-indigo-600 underline">Sign in</a>
        </p>
    </div>
</div>
{{end}}`,

	"dashboard": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="mb-6">
        <h1 class="text-3xl font-bold text-gray-900">Latest news</h1>
        <p class="mt-1 text-sm text-gray-500">Keep up with the latest news and stay informed.</p>
    </div>

    <form action="/dashboard" method="GET" class="bg-white/80 rounded-lg shadow p-4 mb-6 flex flex-wrap gap-4 items-end">
        <div>
            <label for="category" class="block text-sm font-medium text-gray-700">Category</label>
            <select id="category" name="category" class="mt-1 block w-48 border border-gray-300 rounded-md py-2 px-3 sm:text-sm">
                <option value="">All categories</option>
                {{range .Categories}}
                <option value="{{.Name}}" {{if eq .Name $.Query.Category}}selected{{end}}>{{.Name}}</option>
                {{end}}
            </select>
        </div>
        <div>
            <label for="period" class="block text-sm font-medium text-gray-700">Period</label>
            <select id="period" name="period" class="mt-1 block w-48 border border-gray-300 rounded-md py-2 px-3 sm:text-sm">
                <option value="">Any time</option>
                {{range .Periods}}
                <option value="{{.}}" {{if eq . $.Query.Period}}selected{{end}}>{{.Label}}</option>
                {{end}}
            </select>
        </div>
        <button type="submit" class="py-2 px-4 rounded-md text-white bg-indigo-600 hover:bg-indigo-700 text-sm">Apply</button>
        <a href="/dashboard" class="py-2 px-4 rounded-md border border-gray-300 text-sm text-gray-700">Clear filters</a>
    </form>

    {{if .NewsError}}
    <div class="rounded-md bg-red-50 p-4 mb-6"><div class="text-sm text-red-700">{{.NewsError}}</div></div>
    {{end}}

    {{if .Page.News}}
    <p class="text-sm text-gray-600 mb-4">
        {{comma .Page.TotalItems}} {{plural .Page.TotalItems "article found" "articles found"}}{{if .Filtered}} with the selected filters{{end}}
    </p>
    <div class="grid grid-cols-1 gap-6 md:grid-cols-2 lg:grid-cols-3">
        {{range .Page.News}}
        <article class="bg-white rounded-lg shadow p-5 flex flex-col">
            <div class="flex flex-wrap gap-2 mb-2">
                {{range .Categories}}<span class="text-xs px-2 py-1 rounded-full bg-indigo-100 text-indigo-800">{{.Name}}</span>{{end}}
            </div>
            <h2 class="text-lg font-semibold text-gray-900"><a href="/news/{{.ID}}" class="hover:text-indigo-600">{{.Title}}</a></h2>
            <p class="mt-2 text-sm text-gray-600 flex-1">{{excerpt . 160}}</p>
            <div class="mt-4 text-xs text-gray-500">
                {{with .Source}}{{.}} · {{end}}<time datetime="{{.PublishedAt.Format "2006-01-02T15:04:05Z07:00"}}">{{timeAgo .PublishedAt}}</time>
            </div>
        </article>
        {{end}}
    </div>

    {{if .Pagination.Visible}}
    <nav class="mt-8 flex items-center justify-between" aria-label="Pagination">
        <span class="text-sm text-gray-600">Page {{.Pagination.Current}} of {{.Pagination.Total}}</span>
        <div class="flex gap-1">
            {{if .Pagination.HasPrev}}<a href="{{.PrevURL}}" class="px-3 py-1 rounded border text-sm">Previous</a>{{end}}
            {{range .PageLinks}}
                {{if .Ellipsis}}<span class="px-3 py-1 text-sm text-gray-400">…</span>
                {{else if .Current}}<span class="px-3 py-1 rounded bg-indigo-600 text-white text-sm" aria-current="page">{{.Label}}</span>
                {{else}}<a href="{{.URL}}" class="px-3 py-1 rounded border text-sm">{{.Label}}</a>{{end}}
            {{end}}
            {{if .Pagination.HasNext}}<a href="{{.NextURL}}" class="px-3 py-1 rounded border text-sm">Next</a>{{end}}
        </div>
    </nav>
    {{end}}
    {{else if not .NewsError}}
    <div class="text-center py-12 text-gray-500">No news found with the selected filters.</div>
    {{end}}
</div>
{{end}}`,

	"news": `{{define "content"}}
<article class="px-4 py-6 sm:px-0 max-w-3xl mx-auto">
    <a href="{{.Back}}" class="text-sm text-indigo-600">&larr; Back to news</a>
    <div class="mt-4 flex flex-wrap gap-2">
        {{range .News.Categories}}<span class="text-xs px-2 py-1 rounded-full bg-indigo-100 text-indigo-800">{{.Name}}</span>{{end}}
    </div>
    <h1 class="mt-2 text-3xl font-bold text-gray-900">{{.News.Title}}</h1>
    <p class="mt-2 text-sm text-gray-500">
        {{with .News.Source}}{{.}} · {{end}}{{formatDate .News.PublishedAt}} ({{timeAgo .News.PublishedAt}})
    </p>
    <div class="mt-6 space-y-4 text-gray-800">
        {{range paragraphs .News.Content}}<p>{{.}}</p>{{end}}
    </div>
</article>
{{end}}`,

	"profile": `{{define "content"}}
<div class="px-4 py-6 sm:px-0 max-w-3xl mx-auto space-y-6">
    <h1 class="text-3xl font-bold text-gray-900">My profile</h1>

    <section class="bg-white rounded-lg shadow p-6">
        <h2 class="text-lg font-semibold text-gray-900">Personal information</h2>
        <p class="text-sm text-gray-500">Update your details.</p>
        <dl class="mt-4 text-sm text-gray-700">
            <dt class="font-medium">Email</dt><dd>{{.Profile.User.Email}}</dd>
            {{if not .Profile.User.CreatedAt.IsZero}}<dt class="font-medium mt-2">Member since</dt><dd>{{formatDate .Profile.User.CreatedAt}}</dd>{{end}}
        </dl>
        <form action="/profile" method="POST" class="mt-4 flex gap-4 items-end">
            <div class="flex-1">
                <label for="name" class="block text-sm font-medium text-gray-700">Name</label>
                <input id="name" name="name" type="text" value="{{.Profile.User.Name}}" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
            </div>
            <button type="submit" class="py-2 px-4 rounded-md text-white bg-indigo-600 hover:bg-indigo-700 text-sm">Save</button>
        </form>
    </section>

    <section class="bg-white rounded-lg shadow p-6">
        <h2 class="text-lg font-semibold text-gray-900">News preferences</h2>
        <p class="text-sm text-gray-500">Choose the categories you want to follow.</p>
        <form action="/profile/preferences" method="POST" class="mt-4 space-y-2">
            <input type="hidden" name="userId" value="{{.Profile.User.ID}}">
            {{range .Options}}
            <label class="flex items-start gap-2 text-sm text-gray-700">
                <input type="checkbox" name="categoryIds" value="{{.ID}}" {{if .Selected}}checked{{end}}>
                <span><span class="font-medium">{{.Name}}</span>{{with .Description}} <span class="text-gray-500">{{.}}</span>{{end}}</span>
            </label>
            {{else}}
            <p class="text-sm text-gray-500">No categories available.</p>
            {{end}}
            <button type="submit" class="mt-4 py-2 px-4 rounded-md text-white bg-indigo-600 hover:bg-indigo-700 text-sm">Save preferences</button>
        </form>
    </section>
</div>
{{end}}`,

	"error": `{{define "content"}}
<div class="flex items-center justify-center py-24">
    <div class="text-center">
        <h1 class="text-4xl font-bold text-gray-900 mb-4">{{.Heading}}</h1>
        <p class="text-gray-600 mb-8">{{.Message}}</p>
        <a href="/dashboard" class="text-indigo-600 hover:text-indigo-500">Back to the news</a>
    </div>
</div>
{{end}}`,
}
