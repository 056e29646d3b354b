package tmpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "struct data",
			tmpl: "{{ .Source }} -> {{ .Target }}",
			data: struct {
				Source string
				Target string
			}{Source: "en", Target: "es"},
			want: "en -> es",
		},
		{
			name: "no variables",
			tmpl: "static string",
			data: nil,
			want: "static string",
		},
		{
			name:    "missing key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			tmpl:    "{{ .Name }",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name: "quote multiline",
			tmpl: "{{ quote .Text }}",
			data: map[string]string{"Text": "hello\nworld\n"},
			want: "> hello\n> world",
		},
		{
			name: "quote empty",
			tmpl: "{{ quote .Text }}",
			data: map[string]string{"Text": ""},
			want: ">",
		},
		{
			name: "truncate",
			tmpl: "{{ truncate 4 .Text }}",
			data: map[string]string{"Text": "namaste"},
			want: "nama…",
		},
		{
			name: "truncate short string untouched",
			tmpl: "{{ truncate 10 .Text }}",
			data: map[string]string{"Text": "hola"},
			want: "hola",
		},
		{
			name: "truncate counts runes",
			tmpl: "{{ truncate 2 .Text }}",
			data: map[string]string{"Text": "નમસ્તે"},
			want: "નમ…",
		},
		{
			name: "upper",
			tmpl: "{{ upper .Code }}",
			data: map[string]string{"Code": "gu"},
			want: "GU",
		},
		{
			name: "date zero",
			tmpl: "{{ date .When }}",
			data: map[string]time.Time{"When": {}},
			want: "-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Date(t *testing.T) {
	when := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	got, err := Render("{{ date .When }}", map[string]time.Time{"When": when})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09 14:05", got)
}
