// pridged is the HTTP API daemon: deposit creation, balance reads, claims
// and deBridge order execution.
//
// @title        pridge API
// @version      1.0
// @description  Private EVM-to-Solana transfers behind disposable claim links
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/bridge"
	"github.com/xvoidlabs/pridge/internal/api"
	"github.com/xvoidlabs/pridge/internal/client"
	"github.com/xvoidlabs/pridge/internal/config"
	"github.com/xvoidlabs/pridge/internal/handler"
	"github.com/xvoidlabs/pridge/sweep"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	endpoints := client.NewEndpoints(cfg.RPCEndpoints(), log.Named("endpoints"))
	solClient := client.NewSolanaClient(endpoints, log.Named("solana"))
	reader := sweep.NewReader(solClient, log.Named("reader"))
	builder := sweep.NewBuilder(solClient, log.Named("builder"))

	var payer sweep.FeePayer
	if cfg.FeePayerKey != "" {
		key, err := solana.PrivateKeyFromBase58(cfg.FeePayerKey)
		if err != nil {
			log.Fatal("invalid FEE_PAYER_KEY", zap.Error(err))
		}
		local, err := sweep.NewLocalFeePayer(key)
		if err != nil {
			log.Fatal("invalid FEE_PAYER_KEY", zap.Error(err))
		}
		payer = local
		log.Info("gasless claims enabled", zap.String("feePayer", local.PublicKey().String()))
	}

	debridge := client.NewDeBridgeClient(cfg.DeBridgeAPIURL, log.Named("debridge"))

	var wallet *client.EVMWallet
	if cfg.EVMRPCURL != "" && cfg.EVMPrivateKey != "" {
		signer, err := client.NewLocalKeySigner(cfg.EVMPrivateKey, cfg.EVMChainID)
		if err != nil {
			log.Fatal("invalid EVM_PRIVATE_KEY", zap.Error(err))
		}
		wallet, err = client.NewEVMWallet(cfg.EVMRPCURL, signer, cfg.EVMChainID, log.Named("evm"))
		if err != nil {
			log.Fatal("EVM RPC", zap.Error(err))
		}
		log.Info("EVM wallet bound",
			zap.String("address", wallet.Address().Hex()),
			zap.Int64("chainId", cfg.EVMChainID))
	}
	adapter := bridge.NewAdapter(debridge, wallet, log.Named("bridge"))

	h := handler.New(cfg, reader, builder, payer, adapter, log.Named("api"))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.SetupRouter(h),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", zap.String("addr", server.Addr), zap.String("network", cfg.Network))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
