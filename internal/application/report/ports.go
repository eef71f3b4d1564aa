package report

// Exporter convierte un reporte en un archivo descargable.
type Exporter interface {
	// Format identificador del formato (xlsx, pdf).
	Format() string
	ContentType() string
	Export(r *Report) ([]byte, error)
}
