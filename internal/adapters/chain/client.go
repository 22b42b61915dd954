package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

// txGasLimit is a flat gas ceiling for every transaction the agent sends.
// Transfers, approvals and single-pool swaps all fit comfortably below it.
const txGasLimit = uint64(600000)

// Client talks to the chain for the agent: read-only token queries signed by
// nobody, and state changes signed by the agent's wallet. All token
// movements from the agent contract's balance go through its
// execute(target, data) passthrough. Implements domain.BalanceReader and
// domain.TransactionSubmitter.
type Client struct {
	eth        *ethclient.Client
	privateKey *ecdsa.PrivateKey // nil in read-only mode
	address    common.Address
	chainID    *big.Int // resolved lazily on first write

	agentContract common.Address
	router        common.Address

	erc20ABI  abi.ABI
	agentABI  abi.ABI
	routerABI abi.ABI
}

// NewClient dials the RPC endpoint and prepares the signing identity.
// An empty privateKeyHex yields a read-only client: balance queries work,
// submitting transactions fails.
func NewClient(rpcEndpoint, privateKeyHex, agentContract, router string) (*Client, error) {
	if rpcEndpoint == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}

	eth, err := ethclient.Dial(rpcEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc node: %w", err)
	}

	erc20ABI, err := ParseERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}
	agentABI, err := ParseAgentABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse agent abi: %w", err)
	}
	routerABI, err := ParseRouterABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse router abi: %w", err)
	}

	c := &Client{
		eth:           eth,
		agentContract: common.HexToAddress(agentContract),
		router:        common.HexToAddress(router),
		erc20ABI:      erc20ABI,
		agentABI:      agentABI,
		routerABI:     routerABI,
	}

	if privateKeyHex != "" {
		privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("error casting public key to ECDSA")
		}
		c.privateKey = privateKey
		c.address = crypto.PubkeyToAddress(*publicKey)
	}

	return c, nil
}

// WalletAddress returns the signing wallet's address (zero in read-only mode).
func (c *Client) WalletAddress() common.Address {
	return c.address
}

// AgentContractAddress returns the proxy contract that custodies funds.
func (c *Client) AgentContractAddress() common.Address {
	return c.agentContract
}

// CanSign reports whether a signing credential is configured.
func (c *Client) CanSign() bool {
	return c.privateKey != nil
}

// TokenBalance returns holder's ERC-20 balance of token in minor units.
func (c *Client) TokenBalance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	result, err := c.callView(ctx, token, c.erc20ABI, MethodBalanceOf, holder)
	if err != nil {
		return nil, err
	}

	var balance *big.Int
	if err := c.erc20ABI.UnpackIntoInterface(&balance, MethodBalanceOf, result); err != nil {
		return nil, fmt.Errorf("failed to unpack balance: %w", err)
	}
	return balance, nil
}

// TokenDecimals returns the token's declared decimal precision.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	result, err := c.callView(ctx, token, c.erc20ABI, MethodDecimals)
	if err != nil {
		return 0, err
	}

	var decimals uint8
	if err := c.erc20ABI.UnpackIntoInterface(&decimals, MethodDecimals, result); err != nil {
		return 0, fmt.Errorf("failed to unpack decimals: %w", err)
	}
	return decimals, nil
}

// RouterAllowance returns how much of owner's token balance the swap router
// may currently spend.
func (c *Client) RouterAllowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	result, err := c.callView(ctx, token, c.erc20ABI, MethodAllowance, owner, c.router)
	if err != nil {
		return nil, err
	}

	var allowance *big.Int
	if err := c.erc20ABI.UnpackIntoInterface(&allowance, MethodAllowance, result); err != nil {
		return nil, fmt.Errorf("failed to unpack allowance: %w", err)
	}
	return allowance, nil
}

// TransferToken moves amount of token from the wallet to recipient and
// waits for the transaction to be mined.
func (c *Client) TransferToken(ctx context.Context, token, recipient common.Address, amount *big.Int) (string, error) {
	data, err := c.erc20ABI.Pack(MethodTransfer, recipient, amount)
	if err != nil {
		return "", fmt.Errorf("failed to pack transfer call: %w", err)
	}
	return c.sendAndWait(ctx, token, data)
}

// ApproveRouterMax grants the router an unlimited allowance over the agent
// contract's token balance. The approve call runs under the contract's
// identity via the execute passthrough.
func (c *Client) ApproveRouterMax(ctx context.Context, token common.Address) (string, error) {
	approveData, err := c.erc20ABI.Pack(MethodApprove, c.router, MaxAllowance())
	if err != nil {
		return "", fmt.Errorf("failed to pack approve call: %w", err)
	}
	return c.executeViaProxy(ctx, token, approveData)
}

// exactInputSingleParams mirrors the router ABI tuple.
type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// SubmitSwap submits a single-pool exact-input swap to the router via the
// proxy passthrough and waits for it to be mined.
func (c *Client) SubmitSwap(ctx context.Context, intent domain.SwapIntent) (string, error) {
	params := exactInputSingleParams{
		TokenIn:           intent.TokenIn,
		TokenOut:          intent.TokenOut,
		Fee:               big.NewInt(intent.Fee),
		Recipient:         intent.Recipient,
		AmountIn:          intent.AmountIn,
		AmountOutMinimum:  intent.MinOut,
		SqrtPriceLimitX96: big.NewInt(0), // no price limit
	}

	swapData, err := c.routerABI.Pack(MethodExactInputSingle, params)
	if err != nil {
		return "", fmt.Errorf("failed to pack swap call: %w", err)
	}
	return c.executeViaProxy(ctx, c.router, swapData)
}

// executeViaProxy wraps calldata in the agent contract's execute(target,
// data) passthrough and submits it from the owning wallet.
func (c *Client) executeViaProxy(ctx context.Context, target common.Address, calldata []byte) (string, error) {
	data, err := c.agentABI.Pack(MethodExecute, target, calldata)
	if err != nil {
		return "", fmt.Errorf("failed to pack execute call: %w", err)
	}
	return c.sendAndWait(ctx, c.agentContract, data)
}

// callView performs a read-only contract call.
func (c *Client) callView(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]byte, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	return result, nil
}

// sendAndWait signs, submits and waits for one transaction, returning its
// hash once mined. A reverted transaction is an error.
func (c *Client) sendAndWait(ctx context.Context, to common.Address, data []byte) (string, error) {
	if c.privateKey == nil {
		return "", fmt.Errorf("no signing credential configured")
	}

	chainID, err := c.resolveChainID(ctx)
	if err != nil {
		return "", err
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.address)
	if err != nil {
		return "", fmt.Errorf("failed to get account nonce: %w", err)
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), txGasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	txHash := signedTx.Hash().Hex()
	log.Printf("[chain] transaction sent: %s", txHash)

	receipt, err := bind.WaitMined(ctx, c.eth, signedTx)
	if err != nil {
		return txHash, fmt.Errorf("failed to wait for transaction %s: %w", txHash, err)
	}
	if receipt.Status == 0 {
		return txHash, fmt.Errorf("transaction %s reverted", txHash)
	}

	return txHash, nil
}

func (c *Client) resolveChainID(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil {
		return c.chainID, nil
	}
	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chain id: %w", err)
	}
	c.chainID = chainID
	return chainID, nil
}
