package worker

// reporte_worker.go: daily cash report delivery.
// Runs from the Redis queue or inline when Redis is not configured. Delivery
// is send-once per tenant and date: a cut already stamped
// email_estado=enviado is skipped, and a Redis lock per cut keeps two workers
// from mailing the same report concurrently.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pasteleria/internal/infra"
	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	lockReportePrefix = "lock:reporte:"
	lockReporteTTL    = 5 * time.Minute
)

// ProcesadorReporte builds and delivers the report of one tenant's date.
type ProcesadorReporte interface {
	Procesar(ctx context.Context, tenantID uuid.UUID, fecha string) error
}

// Locker is a cross-process mutex keyed by name.
type Locker interface {
	Adquirir(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Liberar(ctx context.Context, key string) error
}

// Mailer sends one message with attachments.
type Mailer interface {
	Enviar(ctx context.Context, para []string, asunto, cuerpo string, adjuntos ...infra.Adjunto) error
}

// ReporteWorkerConfig holds all dependencies of the report worker.
// Locker, Almacen and Metrics are optional.
type ReporteWorkerConfig struct {
	Cajas         repository.CajaRepository
	Folios        repository.FolioRepository
	Almacen       infra.Almacen
	Mailer        Mailer
	CB            *infra.CircuitBreaker
	Locker        Locker
	Metrics       *infra.Metrics
	Destinatarios []string
	Negocio       string
	Loc           *time.Location
}

type ReporteWorker struct {
	cfg ReporteWorkerConfig
	now func() time.Time
}

func NewReporteWorker(cfg ReporteWorkerConfig) *ReporteWorker {
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	if cfg.CB == nil {
		cfg.CB = infra.NewCircuitBreaker(infra.DefaultCBConfig())
	}
	return &ReporteWorker{cfg: cfg, now: time.Now}
}

// Procesar returns an error only for failures worth retrying.
func (w *ReporteWorker) Procesar(ctx context.Context, tenantID uuid.UUID, fecha string) error {
	logger := log.With().Str("tenant_id", tenantID.String()).Str("fecha", fecha).Logger()

	if w.cfg.Locker != nil {
		key := lockReportePrefix + tenantID.String() + ":" + fecha
		ok, err := w.cfg.Locker.Adquirir(ctx, key, lockReporteTTL)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("reporte: lock no disponible, se continua sin lock")
		case !ok:
			logger.Info().Msg("reporte: otro proceso ya esta enviando este corte")
			return nil
		default:
			defer func() {
				if err := w.cfg.Locker.Liberar(context.WithoutCancel(ctx), key); err != nil {
					logger.Warn().Err(err).Msg("reporte: no se pudo liberar el lock")
				}
			}()
		}
	}

	corte, err := w.cfg.Cajas.FindByFecha(ctx, nil, tenantID, fecha)
	if err != nil {
		return fmt.Errorf("reporte: cargar corte: %w", err)
	}
	if corte.EmailEstado == model.EmailEnviado {
		logger.Info().Msg("reporte: ya enviado, se omite")
		return nil
	}

	movimientos, err := w.cfg.Cajas.ListMovimientos(ctx, corte.ID)
	if err != nil {
		return fmt.Errorf("reporte: cargar movimientos: %w", err)
	}
	folios, err := w.cfg.Folios.ListByRangoEntrega(ctx, scope.Tenant(tenantID), fecha, fecha)
	if err != nil {
		return fmt.Errorf("reporte: cargar folios: %w", err)
	}

	datos := infra.DatosReporteCorte{
		Negocio:     w.cfg.Negocio,
		Corte:       *corte,
		Movimientos: movimientos,
		Folios:      folios,
		Loc:         w.cfg.Loc,
	}
	pdf, err := infra.RenderReporteCorte(datos)
	if err != nil {
		return w.fallar(ctx, corte.ID, err)
	}

	nombre := fmt.Sprintf("corte_%s.pdf", fecha)
	if w.cfg.Almacen != nil {
		archivo := fmt.Sprintf("corte_%s_%s.pdf", tenantID, fecha)
		ubicacion, err := w.cfg.Almacen.Guardar(ctx, archivo, "application/pdf", pdf)
		if err != nil {
			// The mail still carries the PDF.
			logger.Warn().Err(err).Msg("reporte: no se pudo guardar el PDF")
		} else {
			logger.Info().Str("ubicacion", ubicacion).Msg("reporte: PDF guardado")
		}
	}

	if len(w.cfg.Destinatarios) == 0 {
		_ = w.fallar(ctx, corte.ID, errors.New("sin destinatarios configurados"))
		return nil
	}

	asunto := fmt.Sprintf("Corte de caja %s", fecha)
	cuerpo := cuerpoReporte(datos)
	adjunto := infra.Adjunto{Nombre: nombre, ContentType: "application/pdf", Datos: pdf}
	err = w.cfg.CB.Execute(func() error {
		return w.cfg.Mailer.Enviar(ctx, w.cfg.Destinatarios, asunto, cuerpo, adjunto)
	})
	if err != nil {
		return w.fallar(ctx, corte.ID, err)
	}

	enviado := w.now().UTC()
	if err := w.cfg.Cajas.ActualizarEmail(ctx, corte.ID, model.EmailEnviado, nil, &enviado); err != nil {
		// Mail is out; a retry would send it twice.
		logger.Error().Err(err).Msg("reporte: enviado pero no se pudo registrar el estado")
	}
	w.cfg.Metrics.Reporte("enviado")
	logger.Info().Strs("para", w.cfg.Destinatarios).Msg("reporte: enviado")
	return nil
}

func (w *ReporteWorker) fallar(ctx context.Context, corteID uint, cause error) error {
	msg := cause.Error()
	if err := w.cfg.Cajas.ActualizarEmail(context.WithoutCancel(ctx), corteID, model.EmailFallido, &msg, nil); err != nil {
		log.Error().Err(err).Uint("corte_id", corteID).Msg("reporte: no se pudo registrar el fallo")
	}
	w.cfg.Metrics.Reporte("fallido")
	return fmt.Errorf("reporte: %w", cause)
}

func cuerpoReporte(d infra.DatosReporteCorte) string {
	res := infra.ResumirFolios(d.Folios)
	var b strings.Builder
	fmt.Fprintf(&b, "Corte de caja del %s\n\n", d.Corte.Fecha)
	fmt.Fprintf(&b, "Ingresos:    %s\n", infra.FormatoMoneda(d.Corte.TotalIngresos))
	fmt.Fprintf(&b, "Egresos:     %s\n", infra.FormatoMoneda(d.Corte.TotalEgresos))
	fmt.Fprintf(&b, "Saldo final: %s\n\n", infra.FormatoMoneda(d.Corte.SaldoFinal))
	fmt.Fprintf(&b, "Movimientos: %d\n", len(d.Movimientos))
	fmt.Fprintf(&b, "Entregas: %d activas, %d canceladas, por cobrar %s\n",
		res.Activos, res.Cancelados, infra.FormatoMoneda(res.Saldo))
	b.WriteString("\nSe adjunta el reporte en PDF.\n")
	return b.String()
}
